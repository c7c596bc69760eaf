package firefly

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/copyleftdev/firefly/internal/optimization"
	"github.com/copyleftdev/firefly/internal/optimization/distance"
)

// ErrTerminated is returned by Step once every generation has run.
var ErrTerminated = errors.New("firefly: run already terminated")

// Result is the output of a complete run.
type Result struct {
	// Best agent observed over the whole run
	Best AgentSnapshot
	// One snapshot per generation, in order
	History []SwarmSnapshot
	// Number of generations run
	Generations int
}

// Solver drives the generational loop. It is not safe for concurrent use.
type Solver struct {
	cfg    Config
	logger *zap.Logger

	swarm  *Swarm
	decay  DecayPolicy
	spread float64

	// alpha for the next generation; owned here and passed into each move
	alpha float64

	best       AgentSnapshot
	history    []SwarmSnapshot
	generation int

	// first error that aborted the run
	err error
}

var _ optimization.Optimizer = (*Solver)(nil)

// NewSolver validates cfg and builds the initial swarm. Errors from the
// objective while evaluating the initial swarm are returned unchanged.
func NewSolver(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.Metric == nil {
		cfg.Metric = distance.Euclidean{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	swarm, err := NewSwarm(cfg.PopulationSize, AgentConfig{
		Dimension: cfg.Dimension,
		Bounds:    cfg.Bounds,
		Coefficients: Coefficients{
			Beta0:   cfg.Beta0,
			BetaMin: cfg.BetaMin,
			Gamma:   cfg.Gamma,
		},
		Objective: cfg.Objective,
		Metric:    cfg.Metric,
		Rand:      rand.New(rand.NewSource(seed)),
	}, cfg.Mode, cfg.InitialPositions)
	if err != nil {
		return nil, err
	}

	s := &Solver{
		cfg:     cfg,
		logger:  logger,
		swarm:   swarm,
		decay:   cfg.decayPolicy(),
		spread:  cfg.spread(),
		alpha:   cfg.Alpha0,
		best:    swarm.Best().Snapshot(),
		history: make([]SwarmSnapshot, 0, cfg.MaxGenerations),
	}

	logger.Info("swarm initialized",
		zap.Int("population", cfg.PopulationSize),
		zap.Int("dimension", cfg.Dimension),
		zap.Int("max_generations", cfg.MaxGenerations),
		zap.Stringer("mode", cfg.Mode),
		zap.Stringer("decay", cfg.Decay),
		zap.Stringer("exploration", cfg.Exploration),
		zap.Float64("best_light", s.best.Light()),
	)
	return s, nil
}

// Step runs one generation: attraction pass, ranking, exploration move,
// best update, history capture and alpha decay.
func (s *Solver) Step() error {
	if s.err != nil {
		return s.err
	}
	if s.Done() {
		return ErrTerminated
	}

	if err := s.swarm.Attract(s.alpha); err != nil {
		return s.fail(err)
	}
	s.swarm.Rank()
	s.observeBest()

	if err := s.swarm.Explore(s.spread, s.cfg.Exploration); err != nil {
		return s.fail(err)
	}
	s.swarm.Rank()
	s.observeBest()

	snapshot := s.swarm.Snapshot(s.generation, s.alpha)
	s.history = append(s.history, snapshot)

	if ce := s.logger.Check(zap.DebugLevel, "generation complete"); ce != nil {
		stats := snapshot.Stats()
		ce.Write(
			zap.Int("generation", s.generation),
			zap.Float64("alpha", s.alpha),
			zap.Float64("swarm_best", stats.Best),
			zap.Float64("swarm_mean", stats.Mean),
			zap.Float64("swarm_stddev", stats.StdDev),
			zap.Float64("best_light", s.best.Light()),
		)
	}

	s.alpha = s.decay.Next(s.alpha)
	s.generation++
	return nil
}

// Run steps until every generation has run and returns the result.
func (s *Solver) Run() (*Result, error) {
	for !s.Done() {
		if err := s.Step(); err != nil {
			return nil, err
		}
	}
	if s.err != nil {
		return nil, s.err
	}

	s.logger.Info("run complete",
		zap.Int("generations", s.generation),
		zap.Float64("best_light", s.best.Light()),
		zap.Float64s("best_position", s.best.Position()),
	)
	return s.Result(), nil
}

// Result returns the run state so far.
func (s *Solver) Result() *Result {
	return &Result{
		Best:        s.best,
		History:     s.History(),
		Generations: s.generation,
	}
}

// Done reports whether every configured generation has run.
func (s *Solver) Done() bool {
	return s.generation >= s.cfg.MaxGenerations
}

// Err returns the error that aborted the run, if any.
func (s *Solver) Err() error {
	return s.err
}

// Generation returns the number of completed generations.
func (s *Solver) Generation() int {
	return s.generation
}

// MaxGenerations returns the configured run length.
func (s *Solver) MaxGenerations() int {
	return s.cfg.MaxGenerations
}

// Alpha returns the randomness scale the next generation will use.
func (s *Solver) Alpha() float64 {
	return s.alpha
}

// Mode returns the direction of optimization.
func (s *Solver) Mode() optimization.Mode {
	return s.cfg.Mode
}

// Bounds returns the search box.
func (s *Solver) Bounds() optimization.Bounds {
	return s.cfg.Bounds
}

// Best returns the best agent observed so far.
func (s *Solver) Best() AgentSnapshot {
	return s.best
}

// BestSolution implements optimization.Optimizer.
func (s *Solver) BestSolution() *optimization.Solution {
	return s.best.Solution()
}

// History returns the generation snapshots recorded so far.
func (s *Solver) History() []SwarmSnapshot {
	return append([]SwarmSnapshot(nil), s.history...)
}

// Latest returns the most recent snapshot, or false before the first
// generation.
func (s *Solver) Latest() (SwarmSnapshot, bool) {
	if len(s.history) == 0 {
		return SwarmSnapshot{}, false
	}
	return s.history[len(s.history)-1], true
}

// observeBest records the best-ranked agent if it strictly improves on the
// best so far. A NaN best is replaced by any number.
func (s *Solver) observeBest() {
	candidate := s.swarm.Best()
	current := s.best.Light()
	if s.cfg.Mode.IsBetter(candidate.Light(), current) ||
		(math.IsNaN(current) && !math.IsNaN(candidate.Light())) {
		s.best = candidate.Snapshot()
	}
}

func (s *Solver) fail(err error) error {
	s.err = err
	s.logger.Error("run aborted",
		zap.Int("generation", s.generation),
		zap.Error(err),
	)
	return err
}
