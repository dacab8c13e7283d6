package validation

import "fmt"

// SerializeGrid returns the grid as state codes indexed [z][y][x].
func SerializeGrid(g *Grid) [][][]int {
	d := g.dims
	out := make([][][]int, d.D)
	for z := range out {
		out[z] = make([][]int, d.H)
		for y := range out[z] {
			row := make([]int, d.W)
			base := d.Index(0, y, z)
			for x := range row {
				row[x] = int(g.cells[base+x].State)
			}
			out[z][y] = row
		}
	}
	return out
}

// DeserializeGrid rebuilds a grid from state codes indexed [z][y][x]. Cells
// whose state is at least ALIVE receive score; SPAWNING cells receive
// nothing beyond their state. Ragged arrays and unknown codes fail with
// ErrSnapshotCorrupt.
func DeserializeGrid(dense [][][]int, score float64) (*Grid, error) {
	if len(dense) == 0 || len(dense[0]) == 0 || len(dense[0][0]) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrSnapshotCorrupt)
	}
	d, h, w := len(dense), len(dense[0]), len(dense[0][0])
	g, err := NewGrid(w, h, d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	score = clampScore(score)
	for z, layer := range dense {
		if len(layer) != h {
			return nil, fmt.Errorf("%w: layer %d has %d rows, want %d", ErrSnapshotCorrupt, z, len(layer), h)
		}
		for y, row := range layer {
			if len(row) != w {
				return nil, fmt.Errorf("%w: row %d of layer %d has %d cells, want %d", ErrSnapshotCorrupt, y, z, len(row), w)
			}
			for x, code := range row {
				s, ok := StateFromCode(code)
				if !ok {
					return nil, fmt.Errorf("%w: state code %d at (%d,%d,%d)", ErrSnapshotCorrupt, code, x, y, z)
				}
				if s == StateDead {
					continue
				}
				c := Cell{State: s}
				if s.IsAlive() {
					c.ValidationScore = score
				}
				c.History = c.History.Push(s)
				g.cells[g.dims.Index(x, y, z)] = c
			}
		}
	}
	return g, nil
}
