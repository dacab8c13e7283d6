package validation

import (
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// gridFromRows builds a single-layer grid; '#' marks an ALIVE cell.
func gridFromRows(t *testing.T, score float64, rows ...string) *Grid {
	t.Helper()
	g, err := NewGrid(len(rows[0]), len(rows), 1)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	for y, row := range rows {
		for x, ch := range row {
			if ch != '#' {
				continue
			}
			if err := g.Set(x, y, 0, Cell{State: StateAlive, ValidationScore: score}); err != nil {
				t.Fatalf("Set(%d,%d): %v", x, y, err)
			}
		}
	}
	return g
}

func newTestEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewEngine(cfg, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func mustCell(t *testing.T, g *Grid, x, y, z int) Cell {
	t.Helper()
	c, err := g.Get(x, y, z)
	if err != nil {
		t.Fatalf("Get(%d,%d,%d): %v", x, y, z, err)
	}
	return c
}

func mustStep(t *testing.T, e *Engine) StepResult {
	t.Helper()
	res, err := e.StepGeneration()
	if err != nil {
		t.Fatalf("StepGeneration: %v", err)
	}
	return res
}
