package validation

import (
	"strconv"
	"strings"

	"contract-ca/internal/core"
)

// Parameters describes the active configuration for front ends.
func (e *Engine) Parameters() core.ParameterSnapshot {
	cfg := e.Config()
	r := cfg.Rules
	counts := make([]string, len(r.Birth.Neighbors))
	for i, n := range r.Birth.Neighbors {
		counts[i] = strconv.Itoa(n)
	}
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("w", "Width", cfg.Width),
				intParam("h", "Height", cfg.Height),
				intParam("d", "Depth", cfg.Depth),
				int64Param("seed", "Seed", cfg.Seed),
				intParam("workers", "Workers", cfg.Workers),
				intParam("max_generations", "Max generations", cfg.MaxGenerations),
				floatParam("seed_score", "Seed score", cfg.SeedScore),
				floatParam("soup", "Soup density", cfg.SoupDensity),
			},
		},
		{
			Name: "Birth",
			Params: []core.Parameter{
				{Key: "birth_neighbors", Label: "Birth neighbor counts", Type: core.ParamTypeInt, Value: strings.Join(counts, ",")},
				floatParam("birth_min_score", "Birth min neighbor score", r.Birth.MinNeighborScore),
				floatParam("birth_probability", "Birth probability", r.Birth.Probability),
				floatParam("birth_inheritance", "Score inheritance", r.Birth.Inheritance),
			},
		},
		{
			Name: "Survival",
			Params: []core.Parameter{
				intParam("survival_min", "Survival min neighbors", r.Survival.Min),
				intParam("survival_max", "Survival max neighbors", r.Survival.Max),
				floatParam("maintenance_threshold", "Maintenance threshold", r.Survival.MaintenanceThreshold),
				floatParam("maintenance_decay", "Maintenance decay", r.Survival.Decay),
				floatParam("maintenance_neighbor_weight", "Maintenance neighbor weight", r.Survival.NeighborWeight),
			},
		},
		{
			Name: "Death",
			Params: []core.Parameter{
				intParam("grace_period", "Dying grace period", r.Death.GracePeriod),
				intParam("spawn_timeout", "Spawn timeout", r.Death.SpawnTimeout),
				floatParam("resurrection_chance", "Resurrection chance", r.Death.ResurrectionChance),
				intParam("resurrection_min_neighbors", "Resurrection min neighbors", r.Death.ResurrectionMinNeighbors),
				floatParam("resurrection_score", "Resurrection score", r.Death.ResurrectionScore),
			},
		},
		{
			Name: "Evolution Pressure",
			Params: []core.Parameter{
				floatParam("spawn_noise", "Spawn noise", r.EvolutionPressure.SpawnNoise),
				floatParam("spawn_threshold", "Spawn threshold", r.EvolutionPressure.SpawnThreshold),
				floatParam("reproduction_threshold", "Reproduction threshold", r.EvolutionPressure.ReproductionThreshold),
				floatParam("stress_reversion_chance", "Stress reversion chance", r.EvolutionPressure.StressReversionChance),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// floatKeys are the parameters SetFloatParameter may change. Integer keys
// stay out: grid dimensions and worker counts only apply to a new engine.
var floatKeys = map[string]bool{
	"seed_score":                  true,
	"soup":                        true,
	"birth_min_score":             true,
	"birth_probability":           true,
	"birth_inheritance":           true,
	"maintenance_threshold":       true,
	"maintenance_decay":           true,
	"maintenance_neighbor_weight": true,
	"resurrection_chance":         true,
	"resurrection_score":          true,
	"spawn_noise":                 true,
	"spawn_threshold":             true,
	"reproduction_threshold":      true,
	"stress_reversion_chance":     true,
}

// SetFloatParameter updates a probability-like rule parameter. Values are
// clamped to [0, 1]. Unknown and integer keys report false.
func (e *Engine) SetFloatParameter(key string, value float64) bool {
	if !floatKeys[key] {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	set, ok := setters[key]
	if !ok {
		return false
	}
	probe := e.cfg
	if err := set(&probe, strconv.FormatFloat(clampScore(value), 'f', -1, 64)); err != nil {
		return false
	}
	if probe.Validate() != nil {
		return false
	}
	e.cfg = probe
	return true
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}
