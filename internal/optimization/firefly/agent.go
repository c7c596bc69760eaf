// Package firefly implements the Firefly Algorithm: a swarm of agents that
// move toward brighter peers, with attractiveness decaying with distance
// and a shrinking random perturbation.
package firefly

import (
	"math"
	"math/rand"

	"github.com/copyleftdev/firefly/internal/optimization"
	"github.com/copyleftdev/firefly/internal/optimization/distance"
)

// Coefficients control how strongly a firefly is pulled toward a brighter
// peer.
type Coefficients struct {
	// Attractiveness at distance zero
	Beta0 float64
	// Attractiveness as distance goes to infinity
	BetaMin float64
	// Light absorption rate
	Gamma float64
}

// AgentConfig is the configuration shared by every agent of a swarm.
type AgentConfig struct {
	Dimension    int
	Bounds       optimization.Bounds
	Coefficients Coefficients
	Objective    optimization.Objective
	// Metric defaults to Euclidean when nil
	Metric distance.Metric
	Rand   *rand.Rand
}

func (c AgentConfig) validate() error {
	fail := func(format string, args ...interface{}) error {
		return optimization.NewConfigError("new agent", format, args...).WithComponent("firefly")
	}
	if c.Dimension < 1 {
		return fail("dimension must be at least 1, got %d", c.Dimension)
	}
	if err := c.Bounds.Validate(); err != nil {
		return err
	}
	if c.Objective == nil {
		return fail("objective function is required")
	}
	if c.Rand == nil {
		return fail("random source is required")
	}
	coef := c.Coefficients
	if !finite(coef.Beta0) || !finite(coef.BetaMin) || !finite(coef.Gamma) {
		return fail("coefficients must be finite, got %+v", coef)
	}
	if coef.BetaMin < 0 || coef.Gamma < 0 {
		return fail("coefficients must be non-negative, got %+v", coef)
	}
	if coef.BetaMin > coef.Beta0 {
		return fail("betaMin %v must not exceed beta0 %v", coef.BetaMin, coef.Beta0)
	}
	return nil
}

// Agent is a single firefly. Its light always equals the objective
// evaluated at its current position.
type Agent struct {
	position []float64
	light    float64

	bounds    optimization.Bounds
	coef      Coefficients
	objective optimization.Objective
	metric    distance.Metric
	rng       *rand.Rand

	// candidate buffer, swapped with position on a successful move
	next []float64
}

// NewAgent creates an agent at position, or at a uniformly random point of
// the bounds box when position is nil. A supplied position is copied and
// clamped into the bounds. The objective is evaluated before returning.
func NewAgent(cfg AgentConfig, position []float64) (*Agent, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Metric == nil {
		cfg.Metric = distance.Euclidean{}
	}

	pos := make([]float64, cfg.Dimension)
	if position == nil {
		for i := range pos {
			pos[i] = cfg.Bounds.Low + cfg.Rand.Float64()*cfg.Bounds.Width()
		}
	} else {
		if len(position) != cfg.Dimension {
			return nil, optimization.NewConfigError("new agent",
				"position has dimension %d, want %d", len(position), cfg.Dimension).WithComponent("firefly")
		}
		for i, v := range position {
			if math.IsNaN(v) {
				return nil, optimization.NewConfigError("new agent",
					"coordinate %d of initial position is NaN", i).WithComponent("firefly")
			}
			pos[i] = cfg.Bounds.Clamp(v)
		}
	}

	light, err := cfg.Objective.Evaluate(pos)
	if err != nil {
		return nil, err
	}

	return &Agent{
		position:  pos,
		light:     light,
		bounds:    cfg.Bounds,
		coef:      cfg.Coefficients,
		objective: cfg.Objective,
		metric:    cfg.Metric,
		rng:       cfg.Rand,
		next:      make([]float64, cfg.Dimension),
	}, nil
}

// Position returns a copy of the current position.
func (a *Agent) Position() []float64 {
	return append([]float64(nil), a.position...)
}

// Light returns the objective value at the current position.
func (a *Agent) Light() float64 {
	return a.light
}

// Dimension returns the length of the position.
func (a *Agent) Dimension() int {
	return len(a.position)
}

// Bounds returns the box the agent is confined to.
func (a *Agent) Bounds() optimization.Bounds {
	return a.bounds
}

// Coefficients returns the agent's attractiveness parameters.
func (a *Agent) Coefficients() Coefficients {
	return a.coef
}

// Attractiveness returns (beta0-betaMin)*exp(-gamma*r^2) + betaMin, which
// falls monotonically from beta0 at r=0 toward betaMin.
func (a *Agent) Attractiveness(r float64) float64 {
	if a.coef.Gamma == 0 {
		return a.coef.Beta0
	}
	return (a.coef.Beta0-a.coef.BetaMin)*math.Exp(-a.coef.Gamma*r*r) + a.coef.BetaMin
}

// Randomness returns a mean-zero draw in [-alpha*w/2, alpha*w/2) where w
// is the width of the bounds.
func (a *Agent) Randomness(alpha float64) float64 {
	return alpha * (a.rng.Float64() - 0.5) * a.bounds.Width()
}

// MoveTowards pulls the agent toward other:
//
//	x_i <- clamp(x_i + beta(r)*(y_i - x_i) + alpha*(u - 0.5)*w)
//
// A coordinate whose candidate is NaN, as happens when the metric returns
// NaN, keeps its current value. The light is re-evaluated at the new
// position. If the objective fails the agent is left unchanged and the
// error is returned as is. other is never modified.
func (a *Agent) MoveTowards(other *Agent, alpha float64) error {
	if len(other.position) != len(a.position) {
		return optimization.NewConfigError("move towards",
			"peer has dimension %d, want %d", len(other.position), len(a.position)).WithComponent("firefly")
	}

	r := a.metric.Distance(a.position, other.position)
	beta := a.Attractiveness(r)
	for i, xi := range a.position {
		candidate := xi + beta*(other.position[i]-xi) + a.Randomness(alpha)
		if math.IsNaN(candidate) {
			candidate = xi
		}
		a.next[i] = a.bounds.Clamp(candidate)
	}
	return a.commit()
}

// MoveRandom shifts every coordinate by an independent uniform draw from
// [-spread, spread], clamps it and re-evaluates the light.
func (a *Agent) MoveRandom(spread float64) error {
	if spread < 0 || math.IsNaN(spread) {
		return optimization.NewConfigError("move random",
			"spread must be non-negative, got %v", spread).WithComponent("firefly")
	}
	for i, xi := range a.position {
		a.next[i] = a.bounds.Clamp(xi + (2*a.rng.Float64()-1)*spread)
	}
	return a.commit()
}

// commit evaluates the candidate in a.next and adopts it on success.
func (a *Agent) commit() error {
	light, err := a.objective.Evaluate(a.next)
	if err != nil {
		return err
	}
	a.position, a.next = a.next, a.position
	a.light = light
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Snapshot returns an independent copy of the agent's state.
func (a *Agent) Snapshot() AgentSnapshot {
	return AgentSnapshot{
		position: a.Position(),
		light:    a.light,
	}
}
