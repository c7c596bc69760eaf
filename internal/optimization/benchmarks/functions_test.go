package benchmarks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/firefly/internal/optimization"
)

func TestKnownOptima(t *testing.T) {
	tests := []struct {
		fn       *Func
		x        []float64
		expected float64
		tol      float64
	}{
		{Sphere, []float64{0, 0, 0}, 0, 1e-12},
		{Sphere, []float64{1, 2}, 5, 1e-12},
		{Rosenbrock, []float64{1, 1, 1}, 0, 1e-12},
		{Rastrigin, []float64{0, 0}, 0, 1e-12},
		{Ackley, []float64{0, 0}, 0, 1e-12},
		{Griewank, []float64{0, 0, 0}, 0, 1e-12},
		{Schwefel, []float64{420.9687, 420.9687}, 0, 1e-3},
		{Michalewicz, []float64{2.20, 1.57}, -1.8011, 1e-3},
		{Easom, []float64{math.Pi, math.Pi}, -1, 1e-12},
		{Shubert, []float64{-7.0835, 4.8580}, -186.7309, 1e-3},
		{DeJong5, []float64{-32, -32}, 0.998, 1e-3},
		{Yang, []float64{0, 0}, -1, 1e-12},
		{FourPeaks, []float64{0, 0}, 2, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.fn.Name(), func(t *testing.T) {
			got, err := tt.fn.Evaluate(tt.x)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, tt.tol)
		})
	}
}

func TestDimensionChecks(t *testing.T) {
	for _, fn := range []*Func{Easom, Shubert, DeJong5, FourPeaks} {
		t.Run(fn.Name(), func(t *testing.T) {
			assert.Equal(t, 2, fn.Dimension())

			_, err := fn.Evaluate([]float64{1, 2, 3})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDimension)
			assert.Contains(t, err.Error(), fn.Name())
		})
	}

	_, err := Sphere.Evaluate(nil)
	assert.ErrorIs(t, err, ErrDimension)
}

func TestRegistry(t *testing.T) {
	names := Names()
	require.Len(t, names, len(All))
	assert.IsIncreasing(t, names)

	for _, name := range names {
		fn, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, fn.Name())
		assert.NoError(t, fn.Bounds().Validate(), "bounds of %s", name)
	}

	_, err := Lookup("nope")
	assert.Error(t, err)

	assert.Equal(t, optimization.Maximize, FourPeaks.Mode())
	assert.Equal(t, optimization.Minimize, Sphere.Mode())
}

// Funcs must satisfy the solver's objective contract.
var _ optimization.Objective = Sphere
