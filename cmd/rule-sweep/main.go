package main

import (
	"flag"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"contract-ca/internal/sims/validation"
)

func main() {
	steps := flag.Int("steps", 120, "generations to simulate per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	seeds := flag.Int("seeds", 3, "seeds per parameter set")
	size := flag.Int("size", 48, "grid width and height")
	depth := flag.Int("depth", 1, "grid depth")
	soup := flag.Float64("soup", 0.35, "initial soup density on the comparison layer")
	top := flag.Int("top", 5, "results to print")
	flag.Parse()

	base := validation.DefaultConfig()
	base.Width = *size
	base.Height = *size
	base.Depth = *depth
	base.SoupDensity = *soup
	base.MaxGenerations = 0
	base.Workers = 1

	sets := paramGrid(
		[]float64{0.4, 0.55, 0.7, 0.85, 1.0},
		[]float64{0.5, 0.6, 0.7, 0.8},
	)
	var scenarios []scenario
	for _, p := range sets {
		for s := 1; s <= *seeds; s++ {
			scenarios = append(scenarios, scenario{params: p, seed: int64(s)})
		}
	}

	fmt.Printf("Sweeping %d parameter sets x %d seeds (%d workers, %d steps)\n", len(sets), *seeds, *workers, *steps)

	jobs := make(chan scenario)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sc := range jobs {
				res, err := runScenario(base, sc, *steps)
				if err != nil {
					fmt.Printf("skipping %s seed %d: %v\n", sc.params, sc.seed, err)
					continue
				}
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, sc := range scenarios {
			jobs <- sc
		}
		close(jobs)
	}()

	start := time.Now()
	var all []scenarioResult
	for res := range results {
		all = append(all, res)
	}
	summaries := summarize(all)
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].better(summaries[j]) })
	elapsed := time.Since(start)

	fmt.Printf("\nTop %d parameter sets (elapsed %s):\n", *top, elapsed.Round(time.Millisecond))
	for i := 0; i < len(summaries) && i < *top; i++ {
		s := summaries[i]
		fmt.Printf("%2d) stillLifes=%.2f stable=%.1f alive=%.1f peak=%.1f extinct=%d/%d %s\n",
			i+1, s.meanStillLifes, s.meanStable, s.meanAlive, s.meanPeak, s.extinct, s.runs, s.params)
	}
}
