package validation

import (
	"errors"
	"slices"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"zero width":             func(c *Config) { c.Width = 0 },
		"probability above one":  func(c *Config) { c.Rules.Birth.Probability = 1.5 },
		"negative noise":         func(c *Config) { c.Rules.EvolutionPressure.SpawnNoise = -0.1 },
		"inverted survival":      func(c *Config) { c.Rules.Survival.Min, c.Rules.Survival.Max = 4, 2 },
		"birth count too large":  func(c *Config) { c.Rules.Birth.Neighbors = []int{27} },
		"negative grace period":  func(c *Config) { c.Rules.Death.GracePeriod = -1 },
		"negative workers":       func(c *Config) { c.Workers = -2 },
		"negative max gens":      func(c *Config) { c.MaxGenerations = -1 },
		"soup density above one": func(c *Config) { c.SoupDensity = 2 },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
		if _, err := NewEngine(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: NewEngine should fail with ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Apply(map[string]string{
		"w":                     "20",
		"birth_neighbors":       "3, 4",
		"maintenance_threshold": "0.5",
		"seed":                  "-9",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Width != 20 || cfg.Seed != -9 || cfg.Rules.Survival.MaintenanceThreshold != 0.5 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !slices.Equal(cfg.Rules.Birth.Neighbors, []int{3, 4}) {
		t.Fatalf("unexpected birth neighbors %v", cfg.Rules.Birth.Neighbors)
	}

	err = cfg.Apply(map[string]string{"bogus": "1", "h": "tall"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if cfg.Height != DefaultConfig().Height {
		t.Fatal("unparseable value must not change the field")
	}
}

func TestFromMapIgnoresBadValues(t *testing.T) {
	cfg := FromMap(map[string]string{"h": "x", "d": "5", "unknown": "1"})
	if cfg.Height != DefaultConfig().Height || cfg.Depth != 5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !slices.Contains(OverrideKeys(), "grace_period") {
		t.Fatal("OverrideKeys should list grace_period")
	}
}

func TestNewEngineCopiesBirthNeighbors(t *testing.T) {
	cfg := DefaultConfig()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Rules.Birth.Neighbors[0] = 5
	if got := e.Config().Rules.Birth.Neighbors[0]; got != 3 {
		t.Fatalf("engine config aliased caller slice, got %d", got)
	}
}
