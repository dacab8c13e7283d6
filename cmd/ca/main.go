//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"contract-ca/internal/app"
	"contract-ca/internal/core"
	_ "contract-ca/internal/sims/validation"
)

func main() {
	cfg := app.DefaultConfig()
	name := flag.String("sim", "validation", "registered simulation to view")
	set := flag.String("set", "", "engine overrides as key=value;key=value")
	flag.IntVar(&cfg.Scale, "scale", cfg.Scale, "pixels per cell")
	flag.IntVar(&cfg.TPS, "tps", cfg.TPS, "simulation steps per second")
	flag.IntVar(&cfg.HUDWidth, "hud", cfg.HUDWidth, "parameter panel width in pixels (0 hides it)")
	flag.Int64Var(&cfg.Seed, "seed", 1337, "seed used for the initial soup")
	flag.Parse()
	cfg.Normalize()

	factory, ok := core.Sims()[*name]
	if !ok {
		log.Fatalf("unknown sim %q", *name)
	}

	sim := factory(parseOverrides(*set))
	sim.Reset(cfg.Seed)

	game := app.New(sim, cfg)
	size := sim.Size()

	ebiten.SetWindowTitle("contract-ca: " + sim.Name())
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.HUDWidth, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}

// parseOverrides splits key=value pairs. The soup density defaults to 0.35
// so Reset has something to show.
func parseOverrides(s string) map[string]string {
	out := map[string]string{"soup": "0.35"}
	for _, pair := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(pair, "=")
		if ok && k != "" {
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return out
}
