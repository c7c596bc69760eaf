package firefly

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/firefly/internal/optimization"
)

func oneDimConfig(objective optimization.Objective) AgentConfig {
	cfg := testAgentConfig(11)
	cfg.Dimension = 1
	cfg.Objective = objective
	return cfg
}

func positionsOf(s *Swarm) [][]float64 {
	out := make([][]float64, s.Len())
	for i := range out {
		out[i] = s.Agent(i).Position()
	}
	return out
}

func TestNewSwarm(t *testing.T) {
	t.Run("random population", func(t *testing.T) {
		cfg := testAgentConfig(1)
		s, err := NewSwarm(25, cfg, optimization.Minimize, nil)
		require.NoError(t, err)
		assert.Equal(t, 25, s.Len())
		assertRanked(t, s.Snapshot(0, 0).Lights(), optimization.Minimize)
		for i := 0; i < s.Len(); i++ {
			assertInBounds(t, s.Agent(i).Position(), cfg.Bounds)
		}
	})

	t.Run("initial positions fill the first agents", func(t *testing.T) {
		s, err := NewSwarm(3, testAgentConfig(1), optimization.Minimize, [][]float64{{0, 0}})
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0}, s.Best().Position())
	})

	t.Run("invalid size", func(t *testing.T) {
		_, err := NewSwarm(0, testAgentConfig(1), optimization.Minimize, nil)
		assert.ErrorIs(t, err, optimization.ErrInvalidConfiguration)
	})

	t.Run("too many initial positions", func(t *testing.T) {
		_, err := NewSwarm(1, testAgentConfig(1), optimization.Minimize, [][]float64{{0, 0}, {1, 1}})
		assert.ErrorIs(t, err, optimization.ErrInvalidConfiguration)
	})
}

func TestRank(t *testing.T) {
	initial := [][]float64{{3}, {1}, {-2}}

	tests := []struct {
		mode     optimization.Mode
		expected []float64
	}{
		{optimization.Minimize, []float64{1, 4, 9}},
		{optimization.Maximize, []float64{9, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			s, err := NewSwarm(3, oneDimConfig(optimization.ObjectiveFunc(sphere)), tt.mode, initial)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.Snapshot(0, 0).Lights())
			assert.Equal(t, tt.expected[0], s.Best().Light())
		})
	}

	t.Run("NaN ranks last", func(t *testing.T) {
		obj := optimization.ObjectiveFunc(func(x []float64) (float64, error) {
			if x[0] < 0 {
				return math.NaN(), nil
			}
			return x[0], nil
		})
		for _, mode := range []optimization.Mode{optimization.Minimize, optimization.Maximize} {
			s, err := NewSwarm(4, oneDimConfig(obj), mode, [][]float64{{-1}, {2}, {-3}, {1}})
			require.NoError(t, err)

			lights := s.Snapshot(0, 0).Lights()
			assert.False(t, math.IsNaN(lights[0]))
			assert.False(t, math.IsNaN(lights[1]))
			assert.True(t, math.IsNaN(lights[2]))
			assert.True(t, math.IsNaN(lights[3]))
		}
	})
}

func TestAttract(t *testing.T) {
	t.Run("agents move toward brighter peers only", func(t *testing.T) {
		cfg := oneDimConfig(optimization.ObjectiveFunc(sphere))
		cfg.Coefficients = Coefficients{Beta0: 1, BetaMin: 1, Gamma: 1}

		s, err := NewSwarm(3, cfg, optimization.Minimize, [][]float64{{0.5}, {4}, {-2}})
		require.NoError(t, err)

		require.NoError(t, s.Attract(0))
		for i := 0; i < s.Len(); i++ {
			assertFloat64SlicesEqual(t, s.Agent(i).Position(), []float64{0.5}, 1e-12)
		}
	})

	t.Run("equal lights never trigger a move", func(t *testing.T) {
		obj := &countingObjective{fn: func([]float64) (float64, error) { return 1, nil }}
		cfg := testAgentConfig(1)
		cfg.Objective = obj

		s, err := NewSwarm(6, cfg, optimization.Minimize, nil)
		require.NoError(t, err)
		before := positionsOf(s)
		calls := obj.calls

		require.NoError(t, s.Attract(0.5))
		assert.Equal(t, calls, obj.calls)
		assert.Equal(t, before, positionsOf(s))
	})

	t.Run("NaN agents neither attract nor move", func(t *testing.T) {
		obj := optimization.ObjectiveFunc(func(x []float64) (float64, error) {
			if x[0] < 0 {
				return math.NaN(), nil
			}
			return x[0], nil
		})
		cfg := oneDimConfig(obj)
		cfg.Coefficients = Coefficients{Beta0: 1, BetaMin: 1, Gamma: 1}

		s, err := NewSwarm(3, cfg, optimization.Minimize, [][]float64{{-1}, {0.5}, {0.2}})
		require.NoError(t, err)

		require.NoError(t, s.Attract(0))
		s.Rank()

		assertFloat64SlicesEqual(t, s.Agent(0).Position(), []float64{0.2}, 1e-12)
		assertFloat64SlicesEqual(t, s.Agent(1).Position(), []float64{0.2}, 1e-12)
		assert.Equal(t, []float64{-1}, s.Agent(2).Position())
		assert.True(t, math.IsNaN(s.Agent(2).Light()))
	})

	t.Run("objective errors abort the pass", func(t *testing.T) {
		obj := &countingObjective{fn: sphere, failAfter: 5}
		cfg := testAgentConfig(1)
		cfg.Objective = obj

		s, err := NewSwarm(5, cfg, optimization.Minimize, nil)
		require.NoError(t, err)
		assert.Same(t, errBoom, s.Attract(0.1))
	})
}

func TestExplore(t *testing.T) {
	tests := []struct {
		name  string
		expl  ExplorationPolicy
		moved func(i int) bool
	}{
		{name: "best", expl: ExploreBest, moved: func(i int) bool { return i == 0 }},
		{name: "swarm", expl: ExploreSwarm, moved: func(int) bool { return true }},
		{name: "none", expl: ExploreNone, moved: func(int) bool { return false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testAgentConfig(3)
			s, err := NewSwarm(5, cfg, optimization.Minimize, [][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}})
			require.NoError(t, err)
			before := positionsOf(s)

			require.NoError(t, s.Explore(0.5, tt.expl))
			after := positionsOf(s)
			for i := range after {
				if tt.moved(i) {
					assert.NotEqual(t, before[i], after[i], "agent %d", i)
				} else {
					assert.Equal(t, before[i], after[i], "agent %d", i)
				}
				assertInBounds(t, after[i], cfg.Bounds)
			}
		})
	}
}

func TestSwarmSnapshot(t *testing.T) {
	s, err := NewSwarm(3, oneDimConfig(optimization.ObjectiveFunc(sphere)), optimization.Minimize, [][]float64{{3}, {1}, {-2}})
	require.NoError(t, err)

	snap := s.Snapshot(4, 0.125)
	require.NoError(t, s.Attract(1))
	require.NoError(t, s.Explore(1, ExploreSwarm))

	assert.Equal(t, 4, snap.Generation())
	assert.Equal(t, 0.125, snap.Alpha())
	assert.Equal(t, 3, snap.Len())
	assert.Equal(t, []float64{1, 4, 9}, snap.Lights())
	assert.Equal(t, []float64{1}, snap.Best().Position())
	assert.Equal(t, []float64{-2}, snap.Agent(1).Position())

	stats := snap.Stats()
	mean := 14.0 / 3
	std := math.Sqrt((math.Pow(1-mean, 2) + math.Pow(4-mean, 2) + math.Pow(9-mean, 2)) / 2)
	assert.Equal(t, 1.0, stats.Best)
	assert.InDelta(t, mean, stats.Mean, 1e-12)
	assert.InDelta(t, std, stats.StdDev, 1e-12)

	single, err := NewSwarm(1, oneDimConfig(optimization.ObjectiveFunc(sphere)), optimization.Minimize, [][]float64{{2}})
	require.NoError(t, err)
	assert.Equal(t, Stats{Best: 4, Mean: 4}, single.Snapshot(0, 0).Stats())
}
