package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/copyleftdev/firefly/internal/config"
	"github.com/copyleftdev/firefly/internal/optimization"
	"github.com/copyleftdev/firefly/internal/optimization/benchmarks"
	"github.com/copyleftdev/firefly/internal/optimization/distance"
	"github.com/copyleftdev/firefly/internal/optimization/firefly"
)

var (
	// ErrNotFound is returned for unknown optimization IDs.
	ErrNotFound = errors.New("optimization not found")
	// ErrNotCancellable is returned when cancelling a finished run.
	ErrNotCancellable = errors.New("optimization cannot be cancelled")
	// ErrQueueFull is returned when every worker is busy and the queue is full.
	ErrQueueFull = errors.New("optimization queue is full")
	// ErrShuttingDown is returned once Close has been called.
	ErrShuttingDown = errors.New("server is shutting down")
)

// httpStatus maps service errors onto HTTP status codes.
func httpStatus(err error) int {
	switch {
	case optimization.IsConfigError(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotCancellable):
		return http.StatusConflict
	case errors.Is(err, ErrQueueFull), errors.Is(err, ErrShuttingDown):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// OptimizeRequest starts a run. Unset fields fall back to the objective's
// typical settings and then to the service defaults.
type OptimizeRequest struct {
	Objective        string      `json:"objective"`
	Dimension        int         `json:"dimension,omitempty"`
	Bounds           []float64   `json:"bounds,omitempty"`
	Mode             string      `json:"mode,omitempty"`
	Distance         string      `json:"distance,omitempty"`
	PopulationSize   int         `json:"population_size,omitempty"`
	MaxGenerations   *int        `json:"max_generations,omitempty"`
	Alpha            *float64    `json:"alpha,omitempty"`
	Beta0            *float64    `json:"beta0,omitempty"`
	BetaMin          *float64    `json:"beta_min,omitempty"`
	Gamma            *float64    `json:"gamma,omitempty"`
	Delta            *float64    `json:"delta,omitempty"`
	Decay            string      `json:"decay,omitempty"`
	Exploration      string      `json:"exploration,omitempty"`
	Spread           float64     `json:"spread,omitempty"`
	Seed             int64       `json:"seed,omitempty"`
	InitialPositions [][]float64 `json:"initial_positions,omitempty"`
}

// solverConfig resolves the request against the objective catalogue and
// the service configuration. Every error matches
// optimization.ErrInvalidConfiguration.
func (req *OptimizeRequest) solverConfig(cfg *config.Config) (firefly.Config, error) {
	fail := func(format string, args ...interface{}) error {
		return optimization.NewConfigError("optimize request", format, args...).WithComponent("server")
	}

	if req.Objective == "" {
		return firefly.Config{}, fail("objective is required (one of %v)", benchmarks.Names())
	}
	fn, err := benchmarks.Lookup(req.Objective)
	if err != nil {
		return firefly.Config{}, fail("%v", err)
	}

	defaults := cfg.Firefly
	caps := cfg.Optimization

	out := firefly.DefaultConfig()
	out.Objective = fn
	out.Bounds = fn.Bounds()
	out.Mode = fn.Mode()
	out.PopulationSize = defaults.PopulationSize
	out.MaxGenerations = defaults.MaxGenerations
	out.Alpha0 = defaults.Alpha
	out.Beta0 = defaults.Beta0
	out.BetaMin = defaults.BetaMin
	out.Gamma = defaults.Gamma
	out.Delta = defaults.Delta
	out.Spread = req.Spread
	out.RandomSeed = req.Seed
	out.InitialPositions = req.InitialPositions

	switch {
	case req.Dimension != 0:
		out.Dimension = req.Dimension
	case fn.Dimension() != 0:
		out.Dimension = fn.Dimension()
	}
	if fn.Dimension() != 0 && out.Dimension != fn.Dimension() {
		return firefly.Config{}, fail("objective %s is only defined in %d dimensions", fn.Name(), fn.Dimension())
	}

	if req.Bounds != nil {
		if len(req.Bounds) != 2 {
			return firefly.Config{}, fail("bounds must be [low, high], got %d values", len(req.Bounds))
		}
		out.Bounds = optimization.Bounds{Low: req.Bounds[0], High: req.Bounds[1]}
	}
	if req.Mode != "" {
		if out.Mode, err = optimization.ParseMode(req.Mode); err != nil {
			return firefly.Config{}, err
		}
	}
	if out.Metric, err = distance.ByName(req.Distance); err != nil {
		return firefly.Config{}, fail("%v", err)
	}

	decay := defaults.Decay
	if req.Decay != "" {
		decay = req.Decay
	}
	if out.Decay, err = firefly.ParseDecayKind(decay); err != nil {
		return firefly.Config{}, err
	}
	exploration := defaults.Exploration
	if req.Exploration != "" {
		exploration = req.Exploration
	}
	if out.Exploration, err = firefly.ParseExplorationPolicy(exploration); err != nil {
		return firefly.Config{}, err
	}

	if req.PopulationSize != 0 {
		out.PopulationSize = req.PopulationSize
	}
	if req.MaxGenerations != nil {
		out.MaxGenerations = *req.MaxGenerations
	}
	for _, p := range []struct {
		dst *float64
		src *float64
	}{
		{&out.Alpha0, req.Alpha},
		{&out.Beta0, req.Beta0},
		{&out.BetaMin, req.BetaMin},
		{&out.Gamma, req.Gamma},
		{&out.Delta, req.Delta},
	} {
		if p.src != nil {
			*p.dst = *p.src
		}
	}

	if out.PopulationSize > caps.MaxPopulation {
		return firefly.Config{}, fail("population size %d exceeds the limit of %d", out.PopulationSize, caps.MaxPopulation)
	}
	if out.MaxGenerations > caps.MaxGenerations {
		return firefly.Config{}, fail("max generations %d exceeds the limit of %d", out.MaxGenerations, caps.MaxGenerations)
	}
	if out.Dimension > caps.MaxDimension {
		return firefly.Config{}, fail("dimension %d exceeds the limit of %d", out.Dimension, caps.MaxDimension)
	}

	if err := out.Validate(); err != nil {
		return firefly.Config{}, err
	}
	return out, nil
}

// StartResponse acknowledges a queued run.
type StartResponse struct {
	ID     string `json:"optimization_id"`
	Status string `json:"status"`
}

// StatusResponse describes a run.
type StatusResponse struct {
	ID             string           `json:"optimization_id"`
	Status         string           `json:"status"`
	Objective      string           `json:"objective"`
	Mode           string           `json:"mode"`
	Generation     int              `json:"generation"`
	MaxGenerations int              `json:"max_generations"`
	Progress       float64          `json:"progress"`
	StartTime      string           `json:"start_time"`
	EndTime        string           `json:"end_time,omitempty"`
	LastUpdate     string           `json:"last_update"`
	Error          string           `json:"error,omitempty"`
	BestSolution   *SolutionView    `json:"best_solution,omitempty"`
	History        []GenerationView `json:"history,omitempty"`
}

// SolutionView is a position and its objective value.
type SolutionView struct {
	Parameters []Float `json:"parameters"`
	Value      Float   `json:"value"`
}

// GenerationView summarises one generation.
type GenerationView struct {
	Generation int            `json:"generation"`
	Alpha      Float          `json:"alpha"`
	BestLight  Float          `json:"best_light"`
	MeanLight  Float          `json:"mean_light"`
	StdDev     Float          `json:"stddev_light"`
	Agents     []SolutionView `json:"agents,omitempty"`
}

// BenchmarkView describes a catalogue objective.
type BenchmarkView struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Bounds    []float64 `json:"bounds"`
	Mode      string    `json:"mode"`
}

// Float encodes NaN and infinities as null, which encoding/json rejects.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func floats(xs []float64) []Float {
	out := make([]Float, len(xs))
	for i, x := range xs {
		out[i] = Float(x)
	}
	return out
}

func solutionView(a firefly.AgentSnapshot) *SolutionView {
	return &SolutionView{
		Parameters: floats(a.Position()),
		Value:      Float(a.Light()),
	}
}

func generationView(snap firefly.SwarmSnapshot, full bool) GenerationView {
	stats := snap.Stats()
	v := GenerationView{
		Generation: snap.Generation(),
		Alpha:      Float(snap.Alpha()),
		BestLight:  Float(stats.Best),
		MeanLight:  Float(stats.Mean),
		StdDev:     Float(stats.StdDev),
	}
	if full {
		v.Agents = make([]SolutionView, snap.Len())
		for i := range v.Agents {
			v.Agents[i] = *solutionView(snap.Agent(i))
		}
	}
	return v
}

func benchmarkCatalogue() []BenchmarkView {
	out := make([]BenchmarkView, 0, len(benchmarks.All))
	for _, name := range benchmarks.Names() {
		fn, _ := benchmarks.Lookup(name)
		b := fn.Bounds()
		out = append(out, BenchmarkView{
			Name:      fn.Name(),
			Dimension: fn.Dimension(),
			Bounds:    []float64{b.Low, b.High},
			Mode:      fn.Mode().String(),
		})
	}
	return out
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
