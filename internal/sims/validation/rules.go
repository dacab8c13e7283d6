package validation

import (
	"fmt"
	"slices"

	"contract-ca/pkg/core"
)

// RuleContext carries everything a transition may consult besides the cell
// and its neighbor summary.
type RuleContext struct {
	RNG        *core.RNG
	Rules      EvolutionRules
	Generation uint64

	// StillLife reports the still-life template covering the cell on the
	// comparison layer of the prior grid, if any.
	StillLife func() (string, bool)
}

// Outcome is the result of applying a Rule to one cell.
type Outcome struct {
	State  State
	Score  float64
	Age    int
	Meta   Meta
	Reason string
}

// Rule computes the next state of a cell whose age has already been advanced
// for this step. Rules must not touch the grid.
type Rule func(c Cell, n NeighborSummary, ctx *RuleContext) Outcome

// Transitions is the state dispatch table used by the engine.
var Transitions = map[State]Rule{
	StateDead:        deadRule,
	StateSpawning:    spawningRule,
	StateAlive:       aliveRule,
	StateValidated:   validatedRule,
	StateStable:      stableRule,
	StateReproducing: reproducingRule,
	StateDying:       dyingRule,
	StateGhost:       ghostRule,
}

func keep(c Cell) Outcome {
	return Outcome{State: c.State, Score: c.ValidationScore, Age: c.Age, Meta: c.Meta}
}

func deadRule(c Cell, n NeighborSummary, ctx *RuleContext) Outcome {
	birth := ctx.Rules.Birth
	if !slices.Contains(birth.Neighbors, n.Alive) || n.AvgScore < birth.MinNeighborScore {
		return keep(c)
	}
	if !ctx.RNG.Bernoulli(birth.Probability) {
		return keep(c)
	}
	inherited := clampScore(n.AvgScore * birth.Inheritance)
	return Outcome{
		State: StateSpawning,
		Score: inherited,
		Age:   0,
		Meta: BirthMeta{
			Generation:     ctx.Generation,
			Parents:        n.Alive,
			InheritedScore: inherited,
		},
		Reason: fmt.Sprintf("birth: %d alive neighbors, avg score %.2f", n.Alive, n.AvgScore),
	}
}

func spawningRule(c Cell, n NeighborSummary, ctx *RuleContext) Outcome {
	p := ctx.Rules.EvolutionPressure
	noisy := n.AvgScore*ctx.Rules.Birth.Inheritance + ctx.RNG.Uniform(-p.SpawnNoise, p.SpawnNoise)
	if noisy >= p.SpawnThreshold {
		out := keep(c)
		out.State = StateAlive
		out.Score = clampScore(noisy)
		out.Reason = fmt.Sprintf("spawn succeeded: score %.2f", noisy)
		return out
	}
	if c.Age > ctx.Rules.Death.SpawnTimeout {
		out := keep(c)
		out.State = StateDead
		out.Meta = nil
		out.Reason = fmt.Sprintf("spawn timeout after %d generations", c.Age)
		return out
	}
	return keep(c)
}

func startDying(c Cell, ctx *RuleContext, cause string) Outcome {
	return Outcome{
		State: StateDying,
		Score: c.ValidationScore,
		Age:   c.Age,
		Meta: DyingMeta{
			OnsetAge: c.Age - 1,
			Since:    ctx.Generation,
			Cause:    cause,
		},
		Reason: cause,
	}
}

func aliveRule(c Cell, n NeighborSummary, ctx *RuleContext) Outcome {
	s := ctx.Rules.Survival
	if n.Alive < s.Min {
		return startDying(c, ctx, fmt.Sprintf("isolation: %d alive neighbors", n.Alive))
	}
	if n.Alive > s.Max {
		return startDying(c, ctx, fmt.Sprintf("overcrowding: %d alive neighbors", n.Alive))
	}
	maintained := c.ValidationScore*s.Decay + n.AvgScore*s.NeighborWeight
	if maintained >= s.MaintenanceThreshold {
		out := keep(c)
		out.State = StateValidated
		out.Score = clampScore(maintained)
		out.Reason = fmt.Sprintf("maintenance passed: score %.2f", maintained)
		return out
	}
	if c.ValidationScore < s.MaintenanceThreshold {
		return startDying(c, ctx, fmt.Sprintf("maintenance failed: score %.2f", c.ValidationScore))
	}
	return keep(c)
}

// inSurvivalRange reports whether the alive count keeps a cell comfortable.
func inSurvivalRange(n NeighborSummary, s SurvivalRule) bool {
	return n.Alive >= s.Min && n.Alive <= s.Max
}

func validatedRule(c Cell, n NeighborSummary, ctx *RuleContext) Outcome {
	if ctx.StillLife != nil {
		if pattern, ok := ctx.StillLife(); ok {
			out := keep(c)
			out.State = StateStable
			out.Meta = StableMeta{Pattern: pattern, Since: ctx.Generation}
			out.Reason = "stable: part of " + pattern
			return out
		}
	}
	if c.ValidationScore >= ctx.Rules.EvolutionPressure.ReproductionThreshold && inSurvivalRange(n, ctx.Rules.Survival) {
		out := keep(c)
		out.State = StateReproducing
		out.Reason = fmt.Sprintf("reproducing: score %.2f with %d alive neighbors", c.ValidationScore, n.Alive)
		return out
	}
	return keep(c)
}

// underStress reports environmental stress: the neighborhood has left the
// survival range or its average score fell below the maintenance threshold.
func underStress(n NeighborSummary, s SurvivalRule) bool {
	return !inSurvivalRange(n, s) || n.AvgScore < s.MaintenanceThreshold
}

func stableRule(c Cell, n NeighborSummary, ctx *RuleContext) Outcome {
	if !underStress(n, ctx.Rules.Survival) {
		return keep(c)
	}
	if !ctx.RNG.Bernoulli(ctx.Rules.EvolutionPressure.StressReversionChance) {
		return keep(c)
	}
	out := keep(c)
	out.State = StateAlive
	out.Meta = ResurrectMeta{Generation: ctx.Generation, From: StateStable}
	out.Reason = fmt.Sprintf("environmental stress: %d alive neighbors, avg score %.2f", n.Alive, n.AvgScore)
	return out
}

func reproducingRule(c Cell, _ NeighborSummary, _ *RuleContext) Outcome {
	out := keep(c)
	out.State = StateValidated
	out.Reason = "reproduction complete"
	return out
}

func dyingRule(c Cell, n NeighborSummary, ctx *RuleContext) Outcome {
	onset := 0
	if m, ok := c.Meta.(DyingMeta); ok {
		onset = m.OnsetAge
	}
	d := ctx.Rules.Death
	if dying := c.Age - onset; dying > d.GracePeriod {
		out := keep(c)
		out.State = StateGhost
		out.Reason = fmt.Sprintf("grace period expired after %d generations", dying)
		return out
	}
	if n.Alive >= d.ResurrectionMinNeighbors && ctx.RNG.Bernoulli(d.ResurrectionChance) {
		return Outcome{
			State:  StateAlive,
			Score:  clampScore(d.ResurrectionScore),
			Age:    c.Age,
			Meta:   ResurrectMeta{Generation: ctx.Generation, From: StateDying},
			Reason: fmt.Sprintf("resurrected by %d alive neighbors", n.Alive),
		}
	}
	return keep(c)
}

func ghostRule(Cell, NeighborSummary, *RuleContext) Outcome {
	return Outcome{State: StateDead, Score: 0, Age: 0, Reason: "ghost cleared"}
}
