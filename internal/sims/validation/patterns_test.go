package validation

import (
	"errors"
	"testing"
)

func TestCatalog(t *testing.T) {
	want := map[string]PatternKind{
		"block": KindStillLife, "beehive": KindStillLife, "loaf": KindStillLife,
		"boat": KindStillLife, "tub": KindStillLife,
		"blinker": KindOscillator, "toad": KindOscillator, "beacon": KindOscillator,
		"glider": KindMover,
	}
	for id, kind := range want {
		tpl, err := LookupTemplate(id)
		if err != nil {
			t.Fatalf("LookupTemplate(%q): %v", id, err)
		}
		if tpl.Kind != kind {
			t.Fatalf("%s: expected kind %s, got %s", id, kind, tpl.Kind)
		}
		for i, phase := range tpl.Phases {
			if len(phase) != tpl.Height() || len(phase[0]) != tpl.Width() {
				t.Fatalf("%s phase %d does not share the template box", id, i)
			}
		}
	}
	if _, err := LookupTemplate("pulsar"); !errors.Is(err, ErrUnknownPattern) {
		t.Fatalf("expected ErrUnknownPattern, got %v", err)
	}
	list := Templates()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Fatal("Templates must be sorted by id")
		}
	}
}

func TestMatchesPattern(t *testing.T) {
	g := gridFromRows(t, 0.9,
		"......",
		".##...",
		".##...",
		"......",
	)
	block, _ := LookupTemplate("block")
	if !g.MatchesPattern(1, 1, 0, block.Phases[0]) {
		t.Fatal("block should match at (1,1)")
	}
	if g.MatchesPattern(2, 1, 0, block.Phases[0]) {
		t.Fatal("block must not match at (2,1)")
	}
	if g.MatchesPattern(5, 3, 0, block.Phases[0]) {
		t.Fatal("templates that overflow the grid never match")
	}
	if g.MatchesPattern(1, 1, 1, block.Phases[0]) {
		t.Fatal("layers outside the grid never match")
	}

	wild := [][]uint8{{CodeSpawning, CodeAlive}, {CodeSpawning, CodeAlive}}
	if !g.MatchesPattern(0, 1, 0, wild) || !g.MatchesPattern(1, 1, 0, wild) {
		t.Fatal("spawning template cells should match dead and alive cells alike")
	}
}

func TestMatchingTreatsUpperStatesAsAlive(t *testing.T) {
	g, _ := NewGrid(4, 4, 1)
	for i, s := range []State{StateValidated, StateStable, StateDying, StateGhost} {
		if err := g.Set(1+i%2, 1+i/2, 0, Cell{State: s}); err != nil {
			t.Fatal(err)
		}
	}
	block, _ := LookupTemplate("block")
	if got := g.FindPatternInstances(block); len(got) != 1 {
		t.Fatalf("expected one block, got %v", got)
	}
	if err := g.Set(1, 1, 0, Cell{State: StateSpawning}); err != nil {
		t.Fatal(err)
	}
	if got := g.FindPatternInstances(block); len(got) != 0 {
		t.Fatalf("spawning cells are not alive; got %v", got)
	}
}

func TestFindPatternUsesComparisonLayer(t *testing.T) {
	g, _ := NewGrid(5, 5, 3)
	for _, p := range [][2]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}} {
		if err := g.Set(p[0], p[1], 0, Cell{State: StateAlive}); err != nil {
			t.Fatal(err)
		}
	}
	block, _ := LookupTemplate("block")
	if got := g.FindPatternInstances(block); len(got) != 0 {
		t.Fatalf("patterns off the comparison layer must be ignored, got %v", got)
	}
	for _, p := range [][2]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}} {
		if err := g.Set(p[0], p[1], 1, Cell{State: StateAlive}); err != nil {
			t.Fatal(err)
		}
	}
	got := g.FindPatternInstances(block)
	if len(got) != 1 || got[0].Z != 1 {
		t.Fatalf("expected one block on z=1, got %v", got)
	}
}

func TestAnalyzeWithoutPriorGrid(t *testing.T) {
	g := gridFromRows(t, 0.9,
		".....",
		"..#..",
		"..#..",
		"..#..",
		".....",
	)
	r := AnalyzePatterns(g, nil)
	if r.Compared || len(r.Oscillators) != 0 || len(r.Movers) != 0 || r.Appeared != nil {
		t.Fatalf("no prior grid means no diff, got %+v", r)
	}
}

func TestAnalyzeDetectsOscillator(t *testing.T) {
	prev := gridFromRows(t, 0.9,
		".....",
		"..#..",
		"..#..",
		"..#..",
		".....",
	)
	cur := gridFromRows(t, 0.9,
		".....",
		".....",
		".###.",
		".....",
		".....",
	)
	r := AnalyzePatterns(cur, prev)
	if !r.Compared {
		t.Fatal("expected a diff against the prior grid")
	}
	if len(r.Oscillators) != 1 {
		t.Fatalf("expected one oscillator, got %v", r.Oscillators)
	}
	osc := r.Oscillators[0]
	if osc.TemplateID != "blinker" || osc.Phase != 1 || osc.X != 1 || osc.Y != 1 {
		t.Fatalf("unexpected oscillator %+v", osc)
	}
	if len(r.Appeared) != 2 || len(r.Vanished) != 2 {
		t.Fatalf("expected 2 appeared and 2 vanished, got %v / %v", r.Appeared, r.Vanished)
	}

	if still := AnalyzePatterns(cur, cur); len(still.Oscillators) != 0 {
		t.Fatalf("an unchanged blinker phase is not an oscillation, got %v", still.Oscillators)
	}
}

func TestAnalyzeDetectsMover(t *testing.T) {
	prev := gridFromRows(t, 0.9,
		"......",
		"..#...",
		"...#..",
		".###..",
		"......",
		"......",
	)
	cur := gridFromRows(t, 0.9,
		"......",
		"......",
		".#.#..",
		"..##..",
		"..#...",
		"......",
	)
	r := AnalyzePatterns(cur, prev)
	if len(r.Movers) != 1 {
		t.Fatalf("expected one mover, got %v", r.Movers)
	}
	if m := r.Movers[0]; m.TemplateID != "glider" || m.Phase != 1 || m.X != 1 || m.Y != 2 {
		t.Fatalf("unexpected mover %+v", m)
	}
}

func TestReportAll(t *testing.T) {
	r := PatternReport{
		Static:      []PatternInstance{{TemplateID: "block"}},
		Oscillators: []PatternInstance{{TemplateID: "blinker"}},
		Movers:      []PatternInstance{{TemplateID: "glider"}},
	}
	all := r.All()
	if len(all) != 3 || all[0].TemplateID != "block" || all[2].TemplateID != "glider" {
		t.Fatalf("unexpected All() %v", all)
	}
}

func TestStillLifeCoverageNeedsDeadBorder(t *testing.T) {
	mass := gridFromRows(t, 0.9,
		"......",
		".####.",
		".####.",
		".####.",
		".####.",
		"......",
	)
	block, _ := LookupTemplate("block")
	if got := len(mass.FindPatternInstances(block)); got != 9 {
		t.Fatalf("expected 9 raw block matches in a filled square, got %d", got)
	}
	if cover := mass.stillLifeCoverage(); len(cover) != 0 {
		t.Fatalf("filled square must not count as still lifes, got %v", cover)
	}

	lone := gridFromRows(t, 0.9,
		"##....",
		"##....",
		"......",
		"...##.",
		"...##.",
		"......",
	)
	cover := lone.stillLifeCoverage()
	if len(cover) != 8 {
		t.Fatalf("expected both isolated blocks covered, got %v", cover)
	}
	if cover[[2]int{0, 0}] != "block" || cover[[2]int{4, 4}] != "block" {
		t.Fatalf("unexpected coverage %v", cover)
	}
}
