package validation

// mooreOffsets holds the 26 offsets of the 3D Moore neighborhood.
var mooreOffsets = buildMooreOffsets()

func buildMooreOffsets() [][3]int {
	out := make([][3]int, 0, 26)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				out = append(out, [3]int{dx, dy, dz})
			}
		}
	}
	return out
}

// NeighborSummary condenses the neighborhood of one cell.
type NeighborSummary struct {
	// Total is the number of in-bounds neighbors (at most 26).
	Total     int
	Alive     int
	Validated int
	// AvgScore is the mean ValidationScore over alive neighbors, 0 when
	// there are none.
	AvgScore float64
}

// Neighbors returns the in-bounds Moore neighbors of (x, y, z). Offsets that
// fall outside the grid are dropped rather than wrapped.
func (g *Grid) Neighbors(x, y, z int) ([]Position, error) {
	if err := g.checkBounds(x, y, z); err != nil {
		return nil, err
	}
	out := make([]Position, 0, len(mooreOffsets))
	for _, o := range mooreOffsets {
		nx, ny, nz := x+o[0], y+o[1], z+o[2]
		if !g.dims.Contains(nx, ny, nz) {
			continue
		}
		out = append(out, Position{X: nx, Y: ny, Z: nz})
	}
	return out, nil
}

// AliveNeighbors counts neighbors whose state is at least ALIVE.
func (g *Grid) AliveNeighbors(x, y, z int) (int, error) {
	if err := g.checkBounds(x, y, z); err != nil {
		return 0, err
	}
	return g.summarize(x, y, z).Alive, nil
}

// ValidatedNeighbors counts neighbors whose state is at least VALIDATED.
func (g *Grid) ValidatedNeighbors(x, y, z int) (int, error) {
	if err := g.checkBounds(x, y, z); err != nil {
		return 0, err
	}
	return g.summarize(x, y, z).Validated, nil
}

// Summarize returns the neighbor summary for (x, y, z).
func (g *Grid) Summarize(x, y, z int) (NeighborSummary, error) {
	if err := g.checkBounds(x, y, z); err != nil {
		return NeighborSummary{}, err
	}
	return g.summarize(x, y, z), nil
}

func (g *Grid) summarize(x, y, z int) NeighborSummary {
	var s NeighborSummary
	var scoreSum float64
	for _, o := range mooreOffsets {
		nx, ny, nz := x+o[0], y+o[1], z+o[2]
		if !g.dims.Contains(nx, ny, nz) {
			continue
		}
		s.Total++
		c := &g.cells[g.dims.Index(nx, ny, nz)]
		if c.State.IsAlive() {
			s.Alive++
			scoreSum += c.ValidationScore
		}
		if c.State.IsValidated() {
			s.Validated++
		}
	}
	if s.Alive > 0 {
		s.AvgScore = scoreSum / float64(s.Alive)
	}
	return s
}
