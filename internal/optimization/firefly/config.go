package firefly

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/copyleftdev/firefly/internal/optimization"
	"github.com/copyleftdev/firefly/internal/optimization/distance"
)

const (
	// DefaultTargetRatio is the final/initial alpha ratio reached by
	// exponential decay after MaxGenerations generations.
	DefaultTargetRatio = 1e-4 / 0.9

	// DefaultSpreadRatio scales the bounds width into the exploration
	// spread when Config.Spread is zero.
	DefaultSpreadRatio = 1e-3
)

// ExplorationPolicy selects which agents receive the random exploration
// move at the end of each generation.
type ExplorationPolicy int

const (
	// ExploreBest perturbs only the best-ranked agent
	ExploreBest ExplorationPolicy = iota
	// ExploreSwarm perturbs every agent
	ExploreSwarm
	// ExploreNone disables the exploration move
	ExploreNone
)

func (p ExplorationPolicy) String() string {
	switch p {
	case ExploreBest:
		return "best"
	case ExploreSwarm:
		return "swarm"
	case ExploreNone:
		return "none"
	default:
		return fmt.Sprintf("ExplorationPolicy(%d)", int(p))
	}
}

// ParseExplorationPolicy accepts "best", "swarm" and "none". The empty
// string selects ExploreBest.
func ParseExplorationPolicy(s string) (ExplorationPolicy, error) {
	switch strings.ToLower(s) {
	case "", "best":
		return ExploreBest, nil
	case "swarm", "all":
		return ExploreSwarm, nil
	case "none":
		return ExploreNone, nil
	}
	return ExploreBest, optimization.NewConfigError("parse exploration", "unknown exploration policy %q", s)
}

// Config holds everything needed to run the firefly algorithm.
type Config struct {
	// Dimension of the search space
	Dimension int

	// Bounds applied to every coordinate
	Bounds optimization.Bounds

	// Number of fireflies
	PopulationSize int

	// Number of generations to run; zero only evaluates the initial swarm
	MaxGenerations int

	// Objective function to optimize
	Objective optimization.Objective

	// Metric between positions, Euclidean when nil
	Metric distance.Metric

	// Direction of optimization
	Mode optimization.Mode

	// Initial randomness scale
	Alpha0 float64

	// Attractiveness at distance zero
	Beta0 float64

	// Attractiveness asymptote at infinite distance
	BetaMin float64

	// Light absorption coefficient
	Gamma float64

	// Per-generation alpha multiplier used by DecayGeometric
	Delta float64

	// Alpha decay policy
	Decay DecayKind

	// Final/initial alpha ratio used by DecayExponential, DefaultTargetRatio when zero
	TargetRatio float64

	// Half-width of the exploration move, DefaultSpreadRatio*width when zero
	Spread float64

	// Which agents receive the exploration move
	Exploration ExplorationPolicy

	// Optional starting positions for the first len(InitialPositions) agents
	InitialPositions [][]float64

	// Random seed for reproducibility, clock-based when zero
	RandomSeed int64

	// Logger for run progress, no-op when nil
	Logger *zap.Logger
}

// DefaultConfig returns the classic coefficient set. Objective must still
// be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Dimension:      2,
		Bounds:         optimization.Bounds{Low: -5, High: 5},
		PopulationSize: 40,
		MaxGenerations: 50,
		Mode:           optimization.Minimize,
		Alpha0:         0.25,
		Beta0:          1,
		BetaMin:        0.2,
		Gamma:          1,
		Delta:          0.97,
		Decay:          DecayExponential,
		TargetRatio:    DefaultTargetRatio,
		Exploration:    ExploreBest,
	}
}

// Validate checks the configuration. Every failure matches
// optimization.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return optimization.NewConfigError("validate config", format, args...).WithComponent("firefly")
	}

	if c.Dimension < 1 {
		return fail("dimension must be at least 1, got %d", c.Dimension)
	}
	if err := c.Bounds.Validate(); err != nil {
		return err
	}
	if c.PopulationSize < 1 {
		return fail("population size must be at least 1, got %d", c.PopulationSize)
	}
	if c.MaxGenerations < 0 {
		return fail("max generations must not be negative, got %d", c.MaxGenerations)
	}
	if c.Objective == nil {
		return fail("objective function is required")
	}
	if c.Mode != optimization.Minimize && c.Mode != optimization.Maximize {
		return fail("unknown mode %v", c.Mode)
	}

	coefficients := []struct {
		name  string
		value float64
	}{
		{"alpha0", c.Alpha0},
		{"beta0", c.Beta0},
		{"betaMin", c.BetaMin},
		{"gamma", c.Gamma},
		{"delta", c.Delta},
		{"spread", c.Spread},
	}
	for _, coef := range coefficients {
		if coef.value < 0 || math.IsNaN(coef.value) || math.IsInf(coef.value, 0) {
			return fail("%s must be a finite non-negative number, got %v", coef.name, coef.value)
		}
	}
	if c.BetaMin > c.Beta0 {
		return fail("betaMin %v must not exceed beta0 %v", c.BetaMin, c.Beta0)
	}

	switch c.Decay {
	case DecayExponential:
		if c.TargetRatio != 0 && !(c.TargetRatio > 0 && c.TargetRatio <= 1) {
			return fail("target ratio must lie in (0, 1], got %v", c.TargetRatio)
		}
	case DecayGeometric:
		if c.Delta > 1 {
			return fail("delta must not exceed 1, got %v", c.Delta)
		}
	default:
		return fail("unknown decay policy %v", c.Decay)
	}

	switch c.Exploration {
	case ExploreBest, ExploreSwarm, ExploreNone:
	default:
		return fail("unknown exploration policy %v", c.Exploration)
	}

	if len(c.InitialPositions) > c.PopulationSize {
		return fail("%d initial positions for a population of %d", len(c.InitialPositions), c.PopulationSize)
	}
	return nil
}

// spread resolves the exploration half-width.
func (c *Config) spread() float64 {
	if c.Spread > 0 {
		return c.Spread
	}
	return DefaultSpreadRatio * c.Bounds.Width()
}

// decayPolicy builds the configured alpha decay.
func (c *Config) decayPolicy() DecayPolicy {
	if c.Decay == DecayGeometric {
		return GeometricDecay{Delta: c.Delta}
	}
	ratio := c.TargetRatio
	if ratio == 0 {
		ratio = DefaultTargetRatio
	}
	return NewExponentialDecay(ratio, c.MaxGenerations)
}
