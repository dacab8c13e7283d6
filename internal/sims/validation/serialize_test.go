package validation

import (
	"errors"
	"testing"
)

func TestSerializeGridShape(t *testing.T) {
	g, _ := NewGrid(5, 3, 2)
	if err := g.Set(4, 2, 1, Cell{State: StateGhost}); err != nil {
		t.Fatal(err)
	}
	dense := SerializeGrid(g)
	if len(dense) != 2 {
		t.Fatalf("expected depth 2, got %d", len(dense))
	}
	for _, layer := range dense {
		if len(layer) != 3 {
			t.Fatalf("expected height 3, got %d", len(layer))
		}
		for _, row := range layer {
			if len(row) != 5 {
				t.Fatalf("expected width 5, got %d", len(row))
			}
		}
	}
	if dense[1][2][4] != int(StateGhost) {
		t.Fatalf("expected ghost code at [1][2][4], got %d", dense[1][2][4])
	}
}

func TestDeserializeGrid(t *testing.T) {
	dense := [][][]int{
		{{0, 1}, {2, 3}},
		{{4, 5}, {6, 7}},
	}
	g, err := DeserializeGrid(dense, 0.8)
	if err != nil {
		t.Fatalf("DeserializeGrid: %v", err)
	}
	if d := g.Dims(); d.W != 2 || d.H != 2 || d.D != 2 {
		t.Fatalf("unexpected dims %+v", d)
	}
	if c := mustCell(t, g, 0, 1, 0); c.State != StateAlive || c.ValidationScore != 0.8 {
		t.Fatalf("unexpected alive cell %+v", c)
	}
	if c := mustCell(t, g, 1, 0, 0); c.State != StateSpawning || c.ValidationScore != 0 {
		t.Fatalf("unexpected spawning cell %+v", c)
	}
	if c := mustCell(t, g, 0, 0, 0); c.History.Len() != 0 {
		t.Fatal("dead cells start without history")
	}
}

func TestDeserializeGridRejectsCorruptInput(t *testing.T) {
	cases := map[string][][][]int{
		"empty":        nil,
		"empty layer":  {{}},
		"empty row":    {{{}}},
		"ragged rows":  {{{0, 0}, {0}}},
		"ragged layer": {{{0}, {0}}, {{0}}},
		"unknown code": {{{0, 8}}},
		"negative":     {{{-1}}},
	}
	for name, dense := range cases {
		if _, err := DeserializeGrid(dense, 0.5); !errors.Is(err, ErrSnapshotCorrupt) {
			t.Fatalf("%s: expected ErrSnapshotCorrupt, got %v", name, err)
		}
	}
}
