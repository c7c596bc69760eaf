package firefly

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/copyleftdev/firefly/internal/optimization"
	"github.com/copyleftdev/firefly/internal/optimization/distance"
)

var errBoom = errors.New("boom")

// sphere is a simple quadratic objective function for testing
func sphere(x []float64) (float64, error) {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum, nil
}

// countingObjective wraps fn and counts evaluations.
type countingObjective struct {
	fn    optimization.ObjectiveFunc
	calls int
	// fail every call after this many successful ones, when positive
	failAfter int
}

func (c *countingObjective) Evaluate(x []float64) (float64, error) {
	c.calls++
	if c.failAfter > 0 && c.calls > c.failAfter {
		return 0, errBoom
	}
	return c.fn(x)
}

func testAgentConfig(seed int64) AgentConfig {
	return AgentConfig{
		Dimension:    2,
		Bounds:       optimization.Bounds{Low: -5, High: 5},
		Coefficients: Coefficients{Beta0: 1, BetaMin: 0.2, Gamma: 1},
		Objective:    optimization.ObjectiveFunc(sphere),
		Metric:       distance.Euclidean{},
		Rand:         rand.New(rand.NewSource(seed)),
	}
}

func testSolverConfig() Config {
	cfg := DefaultConfig()
	cfg.Objective = optimization.ObjectiveFunc(sphere)
	cfg.PopulationSize = 20
	cfg.MaxGenerations = 30
	cfg.RandomSeed = 42
	return cfg
}

// assertFloat64SlicesEqual checks if two float64 slices are approximately equal
func assertFloat64SlicesEqual(t *testing.T, got, want []float64, tol float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("at index %d: got %v, want %v (tolerance %v)", i, got[i], want[i], tol)
		}
	}
}

// assertInBounds checks every coordinate lies in the closed box.
func assertInBounds(t *testing.T, position []float64, b optimization.Bounds) {
	t.Helper()

	for i, v := range position {
		if math.IsNaN(v) || v < b.Low || v > b.High {
			t.Fatalf("coordinate %d = %v outside [%v, %v]", i, v, b.Low, b.High)
		}
	}
}

// assertRanked checks lights are ordered best first under mode.
func assertRanked(t *testing.T, lights []float64, mode optimization.Mode) {
	t.Helper()

	for i := 1; i < len(lights); i++ {
		if mode.IsBetter(lights[i], lights[i-1]) {
			t.Fatalf("lights not ranked for %v at %d: %v before %v", mode, i, lights[i-1], lights[i])
		}
	}
}
