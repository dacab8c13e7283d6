package main

import (
	"testing"

	"contract-ca/internal/sims/validation"
)

func TestParamGridCoversProduct(t *testing.T) {
	sets := paramGrid([]float64{0.5, 1}, []float64{0.6, 0.7, 0.8})
	if len(sets) != 6 {
		t.Fatalf("expected 6 sets, got %d", len(sets))
	}
	if sets[4] != (paramSet{birthProbability: 1, maintenanceThreshold: 0.7}) {
		t.Fatalf("unexpected ordering: %+v", sets[4])
	}
}

func TestRunScenarioIsDeterministic(t *testing.T) {
	base := validation.DefaultConfig()
	base.Width, base.Height, base.Depth = 16, 16, 1
	base.SoupDensity = 0.4
	base.MaxGenerations = 0
	sc := scenario{params: paramSet{birthProbability: 0.7, maintenanceThreshold: 0.6}, seed: 3}

	a, err := runScenario(base, sc, 20)
	if err != nil {
		t.Fatal(err)
	}
	b, err := runScenario(base, sc, 20)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("same scenario diverged: %+v vs %+v", a, b)
	}
	if a.peakAlive == 0 {
		t.Fatal("soup should start with live cells")
	}
}

func TestRunScenarioRejectsInvalidParams(t *testing.T) {
	base := validation.DefaultConfig()
	sc := scenario{params: paramSet{birthProbability: 1.5, maintenanceThreshold: 0.6}}
	if _, err := runScenario(base, sc, 1); err == nil {
		t.Fatal("expected probability above 1 to be rejected")
	}
}

func TestSummarizeAveragesPerParamSet(t *testing.T) {
	p := paramSet{birthProbability: 0.7, maintenanceThreshold: 0.6}
	q := paramSet{birthProbability: 1, maintenanceThreshold: 0.6}
	got := summarize([]scenarioResult{
		{scenario: scenario{params: p, seed: 1}, finalAlive: 10, stillLifes: 2},
		{scenario: scenario{params: p, seed: 2}, finalAlive: 0, extinctAt: 7},
		{scenario: scenario{params: q, seed: 1}, finalAlive: 4, stillLifes: 3},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	if got[0].meanAlive != 5 || got[0].meanStillLifes != 1 || got[0].extinct != 1 {
		t.Fatalf("bad summary for p: %+v", got[0])
	}
	if !got[1].better(got[0]) {
		t.Fatal("more still lifes should rank first")
	}
}
