package validation

import (
	"fmt"

	"contract-ca/internal/core"
)

// Position addresses one cell.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Grid is the 3D cell store. A Grid handed out by the engine is a completed
// generation and must be treated as read-only.
type Grid struct {
	dims  core.Dims
	cells []Cell
}

// NewGrid allocates a width×height×depth grid with every cell DEAD.
func NewGrid(w, h, d int) (*Grid, error) {
	if w <= 0 || h <= 0 || d <= 0 {
		return nil, fmt.Errorf("%w: grid dimensions must be positive, got %dx%dx%d", ErrInvalidConfig, w, h, d)
	}
	dims := core.Dims{W: w, H: h, D: d}
	return &Grid{dims: dims, cells: make([]Cell, dims.Len())}, nil
}

// Dims returns the grid extent.
func (g *Grid) Dims() core.Dims { return g.dims }

// ComparisonLayer is the z-slice used for pattern matching.
func (g *Grid) ComparisonLayer() int { return g.dims.D / 2 }

// Initialize resets every cell to a zero DEAD cell.
func (g *Grid) Initialize() {
	for i := range g.cells {
		g.cells[i] = Cell{}
	}
}

func (g *Grid) checkBounds(x, y, z int) error {
	if !g.dims.Contains(x, y, z) {
		return fmt.Errorf("%w: (%d,%d,%d) outside %dx%dx%d", ErrIndexOutOfBounds, x, y, z, g.dims.W, g.dims.H, g.dims.D)
	}
	return nil
}

// Get returns a copy of the cell at (x, y, z).
func (g *Grid) Get(x, y, z int) (Cell, error) {
	if err := g.checkBounds(x, y, z); err != nil {
		return Cell{}, err
	}
	return g.cells[g.dims.Index(x, y, z)], nil
}

// Set stores c at (x, y, z). The score is clamped to [0, 1].
func (g *Grid) Set(x, y, z int, c Cell) error {
	if err := g.checkBounds(x, y, z); err != nil {
		return err
	}
	c.ValidationScore = clampScore(c.ValidationScore)
	g.cells[g.dims.Index(x, y, z)] = c
	return nil
}

// Clone returns a structural copy suitable for diffing.
func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{dims: g.dims, cells: cells}
}

// stateAt is the unchecked accessor used by the hot loops.
func (g *Grid) stateAt(x, y, z int) State {
	return g.cells[g.dims.Index(x, y, z)].State
}

// Layer copies the state codes of slice z into a ByteGrid.
func (g *Grid) Layer(z int) (*core.ByteGrid, error) {
	if z < 0 || z >= g.dims.D {
		return nil, fmt.Errorf("%w: layer %d outside depth %d", ErrIndexOutOfBounds, z, g.dims.D)
	}
	layer := core.NewByteGrid(g.dims.W, g.dims.H)
	g.fillLayer(z, layer.Cells())
	return layer, nil
}

func (g *Grid) fillLayer(z int, dst []uint8) {
	base := g.dims.Index(0, 0, z)
	for i := 0; i < g.dims.W*g.dims.H; i++ {
		dst[i] = uint8(g.cells[base+i].State)
	}
}

// Census counts cells per state.
func (g *Grid) Census() map[State]int {
	counts := make(map[State]int, stateCount)
	for i := range g.cells {
		counts[g.cells[i].State]++
	}
	return counts
}

// CountAlive returns the number of cells whose state is at least ALIVE.
func (g *Grid) CountAlive() int {
	n := 0
	for i := range g.cells {
		if g.cells[i].State.IsAlive() {
			n++
		}
	}
	return n
}
