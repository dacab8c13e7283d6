package main

import (
	"fmt"

	"contract-ca/internal/sims/validation"
)

type paramSet struct {
	birthProbability     float64
	maintenanceThreshold float64
}

func (p paramSet) String() string {
	return fmt.Sprintf("birth=%.2f maintenance=%.2f", p.birthProbability, p.maintenanceThreshold)
}

func paramGrid(births, thresholds []float64) []paramSet {
	sets := make([]paramSet, 0, len(births)*len(thresholds))
	for _, b := range births {
		for _, m := range thresholds {
			sets = append(sets, paramSet{birthProbability: b, maintenanceThreshold: m})
		}
	}
	return sets
}

type scenario struct {
	params paramSet
	seed   int64
}

type scenarioResult struct {
	scenario
	finalAlive int
	peakAlive  int
	stable     int
	stillLifes int
	extinctAt  int
}

// runScenario scatters a soup with the scenario seed and steps it. The run
// stops early once the population dies out.
func runScenario(base validation.Config, sc scenario, steps int) (scenarioResult, error) {
	cfg := base
	cfg.Seed = sc.seed
	cfg.Rules.Birth.Probability = sc.params.birthProbability
	cfg.Rules.Survival.MaintenanceThreshold = sc.params.maintenanceThreshold

	e, err := validation.NewEngine(cfg)
	if err != nil {
		return scenarioResult{}, err
	}
	e.Reset(sc.seed)

	res := scenarioResult{scenario: sc}
	for step := 1; step <= steps; step++ {
		out, err := e.StepGeneration()
		if err != nil {
			return res, err
		}
		alive := out.Record.Stats.TotalAlive
		res.finalAlive = alive
		if alive > res.peakAlive {
			res.peakAlive = alive
		}
		if alive == 0 {
			res.extinctAt = step
			break
		}
	}
	res.stable = e.Grid().Census()[validation.StateStable]
	res.stillLifes = len(e.AnalyzePatterns().Static)
	return res, nil
}

type summary struct {
	params         paramSet
	runs           int
	extinct        int
	meanAlive      float64
	meanPeak       float64
	meanStable     float64
	meanStillLifes float64
}

// better orders summaries by still-life yield, then by survival.
func (s summary) better(o summary) bool {
	if s.meanStillLifes != o.meanStillLifes {
		return s.meanStillLifes > o.meanStillLifes
	}
	if s.extinct != o.extinct {
		return s.extinct < o.extinct
	}
	return s.meanAlive > o.meanAlive
}

func summarize(results []scenarioResult) []summary {
	index := map[paramSet]int{}
	var out []summary
	for _, r := range results {
		i, ok := index[r.params]
		if !ok {
			i = len(out)
			index[r.params] = i
			out = append(out, summary{params: r.params})
		}
		s := &out[i]
		s.runs++
		if r.extinctAt > 0 {
			s.extinct++
		}
		s.meanAlive += float64(r.finalAlive)
		s.meanPeak += float64(r.peakAlive)
		s.meanStable += float64(r.stable)
		s.meanStillLifes += float64(r.stillLifes)
	}
	for i := range out {
		n := float64(out[i].runs)
		out[i].meanAlive /= n
		out[i].meanPeak /= n
		out[i].meanStable /= n
		out[i].meanStillLifes /= n
	}
	return out
}
