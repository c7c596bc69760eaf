package firefly

import (
	"math"
	"sort"

	"github.com/copyleftdev/firefly/internal/optimization"
)

// Swarm is a fixed population of agents kept in rank order by Rank.
type Swarm struct {
	agents []*Agent
	mode   optimization.Mode
}

// NewSwarm creates size agents. The first len(initial) agents start at the
// given positions, the rest at random points. The swarm is ranked before
// it is returned.
func NewSwarm(size int, cfg AgentConfig, mode optimization.Mode, initial [][]float64) (*Swarm, error) {
	if size < 1 {
		return nil, optimization.NewConfigError("new swarm",
			"population size must be at least 1, got %d", size).WithComponent("firefly")
	}
	if len(initial) > size {
		return nil, optimization.NewConfigError("new swarm",
			"%d initial positions for a population of %d", len(initial), size).WithComponent("firefly")
	}

	agents := make([]*Agent, size)
	for i := range agents {
		var position []float64
		if i < len(initial) {
			position = initial[i]
		}
		agent, err := NewAgent(cfg, position)
		if err != nil {
			return nil, err
		}
		agents[i] = agent
	}

	s := &Swarm{agents: agents, mode: mode}
	s.Rank()
	return s, nil
}

// Len returns the population size.
func (s *Swarm) Len() int {
	return len(s.agents)
}

// Agent returns the agent currently ranked i.
func (s *Swarm) Agent(i int) *Agent {
	return s.agents[i]
}

// Mode returns the direction the swarm is ranked in.
func (s *Swarm) Mode() optimization.Mode {
	return s.mode
}

// Best returns the agent ranked first by the last call to Rank.
func (s *Swarm) Best() *Agent {
	return s.agents[0]
}

// Attract runs the all-pairs pass: every agent moves toward each peer that
// is strictly brighter than itself at the moment of comparison. Moves are
// applied immediately and are visible to later comparisons.
func (s *Swarm) Attract(alpha float64) error {
	for i, ai := range s.agents {
		for j, aj := range s.agents {
			if i == j || !s.mode.IsBetter(aj.light, ai.light) {
				continue
			}
			if err := ai.MoveTowards(aj, alpha); err != nil {
				return err
			}
		}
	}
	return nil
}

// Rank sorts the agents best first. NaN lights rank after every other
// value; ties keep their relative order.
func (s *Swarm) Rank() {
	sort.SliceStable(s.agents, func(i, j int) bool {
		return ranksBefore(s.mode, s.agents[i].light, s.agents[j].light)
	})
}

// Explore applies the exploration move selected by policy.
func (s *Swarm) Explore(spread float64, policy ExplorationPolicy) error {
	switch policy {
	case ExploreBest:
		return s.agents[0].MoveRandom(spread)
	case ExploreSwarm:
		for _, a := range s.agents {
			if err := a.MoveRandom(spread); err != nil {
				return err
			}
		}
	}
	return nil
}

// Snapshot freezes the current ranking.
func (s *Swarm) Snapshot(generation int, alpha float64) SwarmSnapshot {
	agents := make([]AgentSnapshot, len(s.agents))
	for i, a := range s.agents {
		agents[i] = a.Snapshot()
	}
	return SwarmSnapshot{
		generation: generation,
		alpha:      alpha,
		agents:     agents,
	}
}

// ranksBefore orders lights for Rank: NaN last, otherwise by mode.
func ranksBefore(mode optimization.Mode, a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return mode.IsBetter(a, b)
}
