package firefly

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/firefly/internal/optimization"
)

func TestExponentialDecay(t *testing.T) {
	d := NewExponentialDecay(0.01, 4)

	alpha := 1.0
	for i := 0; i < 4; i++ {
		next := d.Next(alpha)
		assert.Less(t, next, alpha)
		alpha = next
	}
	assert.InEpsilon(t, 0.01, alpha, 1e-12)

	assert.Equal(t, ExponentialDecay{Factor: 1}, NewExponentialDecay(0.01, 0))
	assert.Equal(t, 0.5, NewExponentialDecay(0.01, 0).Next(0.5))
}

func TestGeometricDecay(t *testing.T) {
	d := GeometricDecay{Delta: 0.97}
	assert.InDelta(t, 0.97*0.25, d.Next(0.25), 1e-15)
	assert.InDelta(t, 0.25*math.Pow(0.97, 2), d.Next(d.Next(0.25)), 1e-15)
}

func TestParseDecayKind(t *testing.T) {
	for in, want := range map[string]DecayKind{
		"":            DecayExponential,
		"exponential": DecayExponential,
		"Geometric":   DecayGeometric,
		"delta":       DecayGeometric,
	} {
		got, err := ParseDecayKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDecayKind("linear")
	assert.ErrorIs(t, err, optimization.ErrInvalidConfiguration)

	assert.Equal(t, "geometric", DecayGeometric.String())
	assert.Equal(t, "DecayKind(5)", DecayKind(5).String())
}
