package validation

import (
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"contract-ca/pkg/core"
)

// GenerationStats counts what happened during one step.
type GenerationStats struct {
	Births     int `json:"births"`
	Deaths     int `json:"deaths"`
	Survivors  int `json:"survivors"`
	TotalAlive int `json:"totalAlive"`
}

// GenerationRecord is the immutable summary of one generation.
type GenerationRecord struct {
	Generation uint64            `json:"generation"`
	Timestamp  time.Time         `json:"timestamp"`
	Stats      GenerationStats   `json:"stats"`
	Duration   time.Duration     `json:"duration"`
	Patterns   []PatternInstance `json:"patterns"`
}

// StateChange describes one cell transition.
type StateChange struct {
	Position   Position `json:"position"`
	From       State    `json:"from"`
	To         State    `json:"to"`
	Reason     string   `json:"reason"`
	Neighbors  int      `json:"neighbors"`
	Generation uint64   `json:"generation"`
}

// StepResult is everything produced by one StepGeneration call. Grid is the
// completed generation and must not be mutated.
type StepResult struct {
	Record  GenerationRecord
	Changes []StateChange
	Report  PatternReport
	Grid    *Grid
}

// Engine evolves the grid one generation at a time. It owns the current and
// previous grids; every step allocates a fresh grid and swaps it in.
type Engine struct {
	mu sync.RWMutex

	cfg        Config
	grid       *Grid
	prev       *Grid
	generation uint64
	display    []uint8

	clock func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, mainly for reproducible records in tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine validates cfg and returns an engine with an all-DEAD grid.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Rules.Birth.Neighbors = slices.Clone(cfg.Rules.Birth.Neighbors)
	grid, err := NewGrid(cfg.Width, cfg.Height, cfg.Depth)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		grid:    grid,
		display: make([]uint8, cfg.Width*cfg.Height),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the active configuration.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// Generation returns the number of completed steps.
func (e *Engine) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// Grid returns the current generation. Callers must treat it as read-only.
func (e *Engine) Grid() *Grid {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid
}

// Previous returns the generation before the current one, or nil before the
// first step.
func (e *Engine) Previous() *Grid {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prev
}

// SetCell writes a cell into a copy of the current generation and swaps the
// copy in, so grids already handed out are never modified.
func (e *Engine) SetCell(x, y, z int, c Cell) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.grid.Clone()
	if err := g.Set(x, y, z, c); err != nil {
		return err
	}
	e.grid = g
	return nil
}

// SeedPattern stamps phase 0 of the template with its top-left corner at
// (x, y, z). Alive codes become ALIVE cells and spawning codes become
// SPAWNING cells; dead codes leave the grid untouched. Nothing is written
// unless the whole template fits.
func (e *Engine) SeedPattern(templateID string, x, y, z int) error {
	t, err := LookupTemplate(templateID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	dims := e.grid.dims
	if !dims.Contains(x, y, z) || !dims.Contains(x+t.Width()-1, y+t.Height()-1, z) {
		return fmt.Errorf("%w: pattern %q (%dx%d) at (%d,%d,%d)", ErrIndexOutOfBounds, templateID, t.Width(), t.Height(), x, y, z)
	}
	g := e.grid.Clone()
	now := e.clock()
	for ty, row := range t.Phases[0] {
		for tx, code := range row {
			var c Cell
			switch code {
			case CodeAlive:
				c = Cell{State: StateAlive, ValidationScore: e.cfg.SeedScore}
			case CodeSpawning:
				c = Cell{State: StateSpawning, ValidationScore: e.cfg.SeedScore * e.cfg.Rules.Birth.Inheritance}
			default:
				continue
			}
			c.History = c.History.Push(c.State)
			c.LastStateChange = now
			if err := g.Set(x+tx, y+ty, z, c); err != nil {
				return err
			}
		}
	}
	e.grid = g
	return nil
}

// StepGeneration computes the next generation from the current one and swaps
// it in. The pass reads only the old grid and writes only the new one, so
// cells are fanned out across workers without further locking. If a worker
// fails nothing is swapped in and the error wraps ErrStepFailed.
func (e *Engine) StepGeneration() (StepResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.clock()
	old := e.grid
	next := &Grid{dims: old.dims, cells: make([]Cell, len(old.cells))}
	gen := e.generation + 1
	cover := old.stillLifeCoverage()

	total := len(old.cells)
	workers := e.workerCount(total)
	chunk := (total + workers - 1) / workers
	parts := make([]stepPart, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, total)
		if lo >= hi {
			continue
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: generation %d cells [%d,%d): %v", ErrStepFailed, gen, lo, hi, r)
				}
			}()
			parts[w] = e.stepRange(old, next, lo, hi, gen, cover, start)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StepResult{}, err
	}

	var stats GenerationStats
	var changes []StateChange
	for _, p := range parts {
		stats.Births += p.stats.Births
		stats.Deaths += p.stats.Deaths
		stats.Survivors += p.stats.Survivors
		stats.TotalAlive += p.stats.TotalAlive
		changes = append(changes, p.changes...)
	}

	report := AnalyzePatterns(next, old)
	report.Generation = gen

	e.prev = old
	e.grid = next
	e.generation = gen

	record := GenerationRecord{
		Generation: gen,
		Timestamp:  start,
		Stats:      stats,
		Duration:   e.clock().Sub(start),
		Patterns:   report.All(),
	}
	return StepResult{Record: record, Changes: changes, Report: report, Grid: next}, nil
}

type stepPart struct {
	stats   GenerationStats
	changes []StateChange
}

func (e *Engine) workerCount(total int) int {
	w := e.cfg.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if w > total {
		w = total
	}
	if w < 1 {
		w = 1
	}
	return w
}

// stepRange applies the transition table to cells [lo, hi).
func (e *Engine) stepRange(old, next *Grid, lo, hi int, gen uint64, cover map[[2]int]string, now time.Time) stepPart {
	var part stepPart
	layer := old.ComparisonLayer()
	rules := e.cfg.Rules
	for i := lo; i < hi; i++ {
		c := old.cells[i]
		x, y, z := old.dims.Coords(i)
		n := old.summarize(x, y, z)

		if c.State == StateDead && !slices.Contains(rules.Birth.Neighbors, n.Alive) {
			next.cells[i] = c
			continue
		}
		if c.State > StateDead {
			c.Age++
		}

		ctx := RuleContext{
			RNG:        core.NewStream(e.cfg.Seed, gen, i),
			Rules:      rules,
			Generation: gen,
		}
		if c.State == StateValidated && z == layer {
			ctx.StillLife = func() (string, bool) {
				id, ok := cover[[2]int{x, y}]
				return id, ok
			}
		}
		out := Transitions[c.State](c, n, &ctx)

		nc := c
		nc.State = out.State
		nc.ValidationScore = clampScore(out.Score)
		nc.Age = out.Age
		nc.Meta = out.Meta
		if out.State != c.State {
			nc.History = c.History.Push(out.State)
			nc.LastStateChange = now
			part.changes = append(part.changes, StateChange{
				Position:   Position{X: x, Y: y, Z: z},
				From:       c.State,
				To:         out.State,
				Reason:     out.Reason,
				Neighbors:  n.Alive,
				Generation: gen,
			})
		}
		next.cells[i] = nc

		switch {
		case c.State == StateDead && out.State == StateSpawning:
			part.stats.Births++
		case c.State == StateSpawning && out.State == StateDead:
			part.stats.Deaths++
		case out.State == StateDying && c.State != StateDying:
			part.stats.Deaths++
		}
		if c.State.IsAlive() && out.State.IsAlive() {
			part.stats.Survivors++
		}
		if out.State.IsAlive() {
			part.stats.TotalAlive++
		}
	}
	return part
}

// AnalyzePatterns reports the patterns of the current generation, diffed
// against the previous one when it exists.
func (e *Engine) AnalyzePatterns() PatternReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	report := AnalyzePatterns(e.grid, e.prev)
	report.Generation = e.generation
	return report
}

// SerializeGrid returns the current generation as state codes.
func (e *Engine) SerializeGrid() [][][]int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return SerializeGrid(e.grid)
}

// Restore replaces the grid with a serialized one and sets the generation
// counter. Alive cells receive the configured seed score; the previous grid
// is dropped.
func (e *Engine) Restore(generation uint64, dense [][][]int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, err := DeserializeGrid(dense, e.cfg.SeedScore)
	if err != nil {
		return err
	}
	if g.dims != e.grid.dims {
		return fmt.Errorf("%w: snapshot is %dx%dx%d, engine is %dx%dx%d", ErrSnapshotCorrupt,
			g.dims.W, g.dims.H, g.dims.D, e.grid.dims.W, e.grid.dims.H, e.grid.dims.D)
	}
	e.grid = g
	e.prev = nil
	e.generation = generation
	return nil
}

// Reset clears the grid, rewinds the generation counter and scatters ALIVE
// cells over the comparison layer according to SoupDensity. A zero seed
// keeps the configured one.
func (e *Engine) Reset(seed int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seed != 0 {
		e.cfg.Seed = seed
	}
	g := &Grid{dims: e.grid.dims, cells: make([]Cell, e.grid.dims.Len())}
	e.grid = g
	e.prev = nil
	e.generation = 0
	if e.cfg.SoupDensity <= 0 {
		return
	}
	r := core.NewRNG(e.cfg.Seed)
	z := g.ComparisonLayer()
	for y := 0; y < g.dims.H; y++ {
		for x := 0; x < g.dims.W; x++ {
			if !r.Bernoulli(e.cfg.SoupDensity) {
				continue
			}
			c := Cell{State: StateAlive, ValidationScore: e.cfg.SeedScore}
			c.History = c.History.Push(StateAlive)
			g.cells[g.dims.Index(x, y, z)] = c
		}
	}
}
