package core

// Dims describes the extent of a 3D grid addressed as (x, y, z).
type Dims struct {
	W, H, D int
}

// Len returns the number of cells covered by the dimensions.
func (d Dims) Len() int { return d.W * d.H * d.D }

// Contains reports whether (x, y, z) lies inside [0,W)×[0,H)×[0,D).
func (d Dims) Contains(x, y, z int) bool {
	return x >= 0 && x < d.W && y >= 0 && y < d.H && z >= 0 && z < d.D
}

// Index returns the linear slice index for coordinates (x, y, z). Layers are
// stored one after another, each in row-major order.
func (d Dims) Index(x, y, z int) int { return (z*d.H+y)*d.W + x }

// Coords is the inverse of Index.
func (d Dims) Coords(i int) (x, y, z int) {
	layer := d.W * d.H
	z = i / layer
	rem := i % layer
	return rem % d.W, rem / d.W, z
}

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order.
// It is the render-facing view of one layer of a 3D grid.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// At returns the value at (x, y), or 0 outside the grid.
func (g *ByteGrid) At(x, y int) uint8 {
	if x < 0 || x >= g.W || y < 0 || y >= g.H {
		return 0
	}
	return g.data[g.Index(x, y)]
}

// Set stores v at (x, y). Out-of-range writes are ignored.
func (g *ByteGrid) Set(x, y int, v uint8) {
	if x < 0 || x >= g.W || y < 0 || y >= g.H {
		return
	}
	g.data[g.Index(x, y)] = v
}

// Clear fills the grid with zeros.
func (g *ByteGrid) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}
