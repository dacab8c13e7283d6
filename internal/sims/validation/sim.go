package validation

import (
	"log/slog"

	"contract-ca/internal/core"
)

// Name returns the simulation identifier.
func (e *Engine) Name() string { return "validation" }

// Size reports the grid dimensions.
func (e *Engine) Size() core.Size {
	return core.Size{W: e.cfg.Width, H: e.cfg.Height, D: e.cfg.Depth}
}

// Step advances the simulation by one generation, discarding the result.
func (e *Engine) Step() {
	if _, err := e.StepGeneration(); err != nil {
		slog.Error("step failed", "error", err)
	}
}

// Cells exposes the state codes of the comparison layer. The returned slice
// is reused between calls.
func (e *Engine) Cells() []uint8 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grid.fillLayer(e.grid.ComparisonLayer(), e.display)
	return e.display
}

func init() {
	core.Register("validation", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		e, err := NewEngine(c)
		if err != nil {
			e, _ = NewEngine(DefaultConfig())
		}
		return e
	})
}
