package firefly

import (
	"gonum.org/v1/gonum/stat"

	"github.com/copyleftdev/firefly/internal/optimization"
)

// AgentSnapshot is a frozen copy of one firefly. It shares no memory with
// the live agent and exposes no mutators.
type AgentSnapshot struct {
	position []float64
	light    float64
}

// Position returns a copy of the recorded position.
func (s AgentSnapshot) Position() []float64 {
	return append([]float64(nil), s.position...)
}

// Coord returns coordinate i of the recorded position.
func (s AgentSnapshot) Coord(i int) float64 {
	return s.position[i]
}

// Dimension returns the length of the recorded position.
func (s AgentSnapshot) Dimension() int {
	return len(s.position)
}

// Light returns the recorded light.
func (s AgentSnapshot) Light() float64 {
	return s.light
}

// Solution converts the snapshot into a freshly allocated Solution.
func (s AgentSnapshot) Solution() *optimization.Solution {
	return &optimization.Solution{
		Parameters: s.Position(),
		Value:      s.light,
	}
}

// SwarmSnapshot is the ranked state of the whole swarm at the end of one
// generation.
type SwarmSnapshot struct {
	generation int
	alpha      float64
	agents     []AgentSnapshot
}

// Generation returns the zero-based generation index.
func (s SwarmSnapshot) Generation() int {
	return s.generation
}

// Alpha returns the randomness scale used during the generation.
func (s SwarmSnapshot) Alpha() float64 {
	return s.alpha
}

// Len returns the number of agents.
func (s SwarmSnapshot) Len() int {
	return len(s.agents)
}

// Agent returns the agent ranked i.
func (s SwarmSnapshot) Agent(i int) AgentSnapshot {
	return s.agents[i]
}

// Best returns the best-ranked agent.
func (s SwarmSnapshot) Best() AgentSnapshot {
	return s.agents[0]
}

// Lights returns the light of every agent in rank order.
func (s SwarmSnapshot) Lights() []float64 {
	lights := make([]float64, len(s.agents))
	for i, a := range s.agents {
		lights[i] = a.light
	}
	return lights
}

// Stats summarises the lights of a snapshot.
type Stats struct {
	Best   float64
	Mean   float64
	StdDev float64
}

// Stats returns the best, mean and sample standard deviation of the lights.
func (s SwarmSnapshot) Stats() Stats {
	lights := s.Lights()
	if len(lights) == 1 {
		return Stats{Best: lights[0], Mean: lights[0]}
	}
	mean, std := stat.MeanStdDev(lights, nil)
	return Stats{Best: lights[0], Mean: mean, StdDev: std}
}
