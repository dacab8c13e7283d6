package validation

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// BirthRule controls DEAD→SPAWNING.
type BirthRule struct {
	// Neighbors lists the alive-neighbor counts that allow a birth.
	Neighbors        []int   `yaml:"neighbors" json:"neighbors"`
	MinNeighborScore float64 `yaml:"minNeighborScore" json:"minNeighborScore"`
	Probability      float64 `yaml:"probability" json:"probability"`
	// Inheritance scales the parents' average score into the newborn's score.
	Inheritance float64 `yaml:"inheritance" json:"inheritance"`
}

// SurvivalRule controls the ALIVE maintenance check.
type SurvivalRule struct {
	Min                  int     `yaml:"min" json:"min"`
	Max                  int     `yaml:"max" json:"max"`
	MaintenanceThreshold float64 `yaml:"maintenanceThreshold" json:"maintenanceThreshold"`
	Decay                float64 `yaml:"decay" json:"decay"`
	NeighborWeight       float64 `yaml:"neighborWeight" json:"neighborWeight"`
}

// DeathRule controls spawn timeouts, the DYING grace period and resurrection.
type DeathRule struct {
	GracePeriod              int     `yaml:"gracePeriod" json:"gracePeriod"`
	SpawnTimeout             int     `yaml:"spawnTimeout" json:"spawnTimeout"`
	ResurrectionChance       float64 `yaml:"resurrectionChance" json:"resurrectionChance"`
	ResurrectionMinNeighbors int     `yaml:"resurrectionMinNeighbors" json:"resurrectionMinNeighbors"`
	ResurrectionScore        float64 `yaml:"resurrectionScore" json:"resurrectionScore"`
}

// PressureRule holds the knobs that push cells between the upper states.
type PressureRule struct {
	SpawnNoise            float64 `yaml:"spawnNoise" json:"spawnNoise"`
	SpawnThreshold        float64 `yaml:"spawnThreshold" json:"spawnThreshold"`
	ReproductionThreshold float64 `yaml:"reproductionThreshold" json:"reproductionThreshold"`
	StressReversionChance float64 `yaml:"stressReversionChance" json:"stressReversionChance"`
}

// EvolutionRules groups all transition thresholds.
type EvolutionRules struct {
	Birth             BirthRule    `yaml:"birth" json:"birth"`
	Survival          SurvivalRule `yaml:"survival" json:"survival"`
	Death             DeathRule    `yaml:"death" json:"death"`
	EvolutionPressure PressureRule `yaml:"evolutionPressure" json:"evolutionPressure"`
}

// Config controls the automaton dimensions and rules.
type Config struct {
	Width  int `yaml:"gridWidth" json:"gridWidth" env:"GRID_WIDTH"`
	Height int `yaml:"gridHeight" json:"gridHeight" env:"GRID_HEIGHT"`
	Depth  int `yaml:"gridDepth" json:"gridDepth" env:"GRID_DEPTH"`

	Rules EvolutionRules `yaml:"evolutionRules" json:"evolutionRules"`

	// MaxGenerations caps multi-generation runs; 0 means unlimited.
	MaxGenerations int   `yaml:"maxGenerations" json:"maxGenerations" env:"MAX_GENERATIONS"`
	Seed           int64 `yaml:"seed" json:"seed" env:"SEED"`

	// Workers is the number of goroutines used per step; 0 uses GOMAXPROCS.
	Workers int `yaml:"workers" json:"workers" env:"WORKERS"`

	// SeedScore is the validation score given to seeded cells.
	SeedScore float64 `yaml:"seedScore" json:"seedScore" env:"SEED_SCORE"`
	// SoupDensity is the chance that Reset places an ALIVE cell on the
	// comparison layer.
	SoupDensity float64 `yaml:"soupDensity" json:"soupDensity" env:"SOUP_DENSITY"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:  32,
		Height: 32,
		Depth:  3,
		Rules: EvolutionRules{
			Birth: BirthRule{
				Neighbors:        []int{3},
				MinNeighborScore: 0.8,
				Probability:      0.7,
				Inheritance:      0.8,
			},
			Survival: SurvivalRule{
				Min:                  2,
				Max:                  3,
				MaintenanceThreshold: 0.6,
				Decay:                0.95,
				NeighborWeight:       0.1,
			},
			Death: DeathRule{
				GracePeriod:              3,
				SpawnTimeout:             3,
				ResurrectionChance:       0.3,
				ResurrectionMinNeighbors: 2,
				ResurrectionScore:        0.4,
			},
			EvolutionPressure: PressureRule{
				SpawnNoise:            0.2,
				SpawnThreshold:        0.5,
				ReproductionThreshold: 0.85,
				StressReversionChance: 0.01,
			},
		},
		MaxGenerations: 1000,
		Seed:           1337,
		SeedScore:      0.9,
	}
}

// Validate reports the first problem with the configuration.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.Depth <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive, got %dx%dx%d", ErrInvalidConfig, c.Width, c.Height, c.Depth)
	}
	r := c.Rules
	unit := map[string]float64{
		"birth.minNeighborScore":                  r.Birth.MinNeighborScore,
		"birth.probability":                       r.Birth.Probability,
		"birth.inheritance":                       r.Birth.Inheritance,
		"survival.maintenanceThreshold":           r.Survival.MaintenanceThreshold,
		"survival.decay":                          r.Survival.Decay,
		"survival.neighborWeight":                 r.Survival.NeighborWeight,
		"death.resurrectionChance":                r.Death.ResurrectionChance,
		"death.resurrectionScore":                 r.Death.ResurrectionScore,
		"evolutionPressure.spawnNoise":            r.EvolutionPressure.SpawnNoise,
		"evolutionPressure.spawnThreshold":        r.EvolutionPressure.SpawnThreshold,
		"evolutionPressure.reproductionThreshold": r.EvolutionPressure.ReproductionThreshold,
		"evolutionPressure.stressReversionChance": r.EvolutionPressure.StressReversionChance,
		"seedScore":                               c.SeedScore,
		"soupDensity":                             c.SoupDensity,
	}
	keys := make([]string, 0, len(unit))
	for k := range unit {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := unit[k]; v < 0 || v > 1 || v != v {
			return fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidConfig, k, v)
		}
	}
	for _, n := range r.Birth.Neighbors {
		if n < 0 || n > len(mooreOffsets) {
			return fmt.Errorf("%w: birth neighbor count %d outside [0,26]", ErrInvalidConfig, n)
		}
	}
	if r.Survival.Min < 0 || r.Survival.Max > len(mooreOffsets) || r.Survival.Min > r.Survival.Max {
		return fmt.Errorf("%w: survival range [%d,%d] is not a valid neighbor range", ErrInvalidConfig, r.Survival.Min, r.Survival.Max)
	}
	if r.Death.GracePeriod < 0 || r.Death.SpawnTimeout < 0 || r.Death.ResurrectionMinNeighbors < 0 {
		return fmt.Errorf("%w: death periods and neighbor minimums must be non-negative", ErrInvalidConfig)
	}
	if c.MaxGenerations < 0 {
		return fmt.Errorf("%w: maxGenerations must be non-negative", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative", ErrInvalidConfig)
	}
	return nil
}

type setter func(c *Config, v string) error

func intSetter(dst func(c *Config) *int) setter {
	return func(c *Config, v string) error {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst(c) = parsed
		return nil
	}
}

func floatSetter(dst func(c *Config) *float64) setter {
	return func(c *Config, v string) error {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst(c) = parsed
		return nil
	}
}

var setters = map[string]setter{
	"w":       intSetter(func(c *Config) *int { return &c.Width }),
	"h":       intSetter(func(c *Config) *int { return &c.Height }),
	"d":       intSetter(func(c *Config) *int { return &c.Depth }),
	"workers": intSetter(func(c *Config) *int { return &c.Workers }),
	"seed": func(c *Config, v string) error {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.Seed = parsed
		return nil
	},
	"max_generations": intSetter(func(c *Config) *int { return &c.MaxGenerations }),
	"seed_score":      floatSetter(func(c *Config) *float64 { return &c.SeedScore }),
	"soup":            floatSetter(func(c *Config) *float64 { return &c.SoupDensity }),
	"birth_neighbors": func(c *Config, v string) error {
		var counts []int
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return err
			}
			counts = append(counts, n)
		}
		c.Rules.Birth.Neighbors = counts
		return nil
	},
	"birth_min_score":             floatSetter(func(c *Config) *float64 { return &c.Rules.Birth.MinNeighborScore }),
	"birth_probability":           floatSetter(func(c *Config) *float64 { return &c.Rules.Birth.Probability }),
	"birth_inheritance":           floatSetter(func(c *Config) *float64 { return &c.Rules.Birth.Inheritance }),
	"survival_min":                intSetter(func(c *Config) *int { return &c.Rules.Survival.Min }),
	"survival_max":                intSetter(func(c *Config) *int { return &c.Rules.Survival.Max }),
	"maintenance_threshold":       floatSetter(func(c *Config) *float64 { return &c.Rules.Survival.MaintenanceThreshold }),
	"maintenance_decay":           floatSetter(func(c *Config) *float64 { return &c.Rules.Survival.Decay }),
	"maintenance_neighbor_weight": floatSetter(func(c *Config) *float64 { return &c.Rules.Survival.NeighborWeight }),
	"grace_period":                intSetter(func(c *Config) *int { return &c.Rules.Death.GracePeriod }),
	"spawn_timeout":               intSetter(func(c *Config) *int { return &c.Rules.Death.SpawnTimeout }),
	"resurrection_chance":         floatSetter(func(c *Config) *float64 { return &c.Rules.Death.ResurrectionChance }),
	"resurrection_min_neighbors":  intSetter(func(c *Config) *int { return &c.Rules.Death.ResurrectionMinNeighbors }),
	"resurrection_score":          floatSetter(func(c *Config) *float64 { return &c.Rules.Death.ResurrectionScore }),
	"spawn_noise":                 floatSetter(func(c *Config) *float64 { return &c.Rules.EvolutionPressure.SpawnNoise }),
	"spawn_threshold":             floatSetter(func(c *Config) *float64 { return &c.Rules.EvolutionPressure.SpawnThreshold }),
	"reproduction_threshold":      floatSetter(func(c *Config) *float64 { return &c.Rules.EvolutionPressure.ReproductionThreshold }),
	"stress_reversion_chance":     floatSetter(func(c *Config) *float64 { return &c.Rules.EvolutionPressure.StressReversionChance }),
}

// OverrideKeys lists the keys accepted by Apply and FromMap.
func OverrideKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply sets the fields named by the flag-style keys in overrides. Unknown
// keys and unparseable values are reported together.
func (c *Config) Apply(overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var errs []error
	for _, k := range keys {
		set, ok := setters[k]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, k))
			continue
		}
		if err := set(c, overrides[k]); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, k, overrides[k], err))
		}
	}
	return errors.Join(errs...)
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Keys that cannot be applied are ignored.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	for k, v := range cfg {
		if set, ok := setters[k]; ok {
			_ = set(&c, v)
		}
	}
	return c
}
