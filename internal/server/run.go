package server

import (
	"time"

	apperrors "github.com/copyleftdev/firefly/internal/errors"
	"github.com/copyleftdev/firefly/internal/logging"
	"github.com/copyleftdev/firefly/internal/optimization/firefly"
)

// runOptimization executes one run on an executor worker. Cancellation is
// checked between generations; a generation in progress always completes.
func (s *Server) runOptimization(state *OptimizationState) {
	runLogger := s.logger.WithFields(map[string]interface{}{
		"optimization_id": state.ID,
		"objective":       state.Objective,
	})

	if !state.begin() {
		state.finish(StatusCancelled, nil)
		s.metrics.RunRejected(state.Objective, StatusCancelled)
		runLogger.Info("Optimization cancelled before start")
		return
	}

	s.metrics.RunStarted()
	start := time.Now()
	status := s.execute(state, runLogger)
	elapsed := time.Since(start)
	s.metrics.RunFinished(state.ID, state.Objective, status, elapsed)

	fields := map[string]interface{}{
		"status":      status,
		"duration_ms": elapsed.Milliseconds(),
	}
	if err := state.Err(); err != nil {
		runLogger.WithError(err).Error("Optimization failed", fields)
		return
	}
	runLogger.Info("Optimization finished", fields)
}

// execute drives the solver and returns the final status.
func (s *Server) execute(state *OptimizationState, runLogger *logging.Logger) string {
	cfg := state.Config
	cfg.Logger = logging.NewZapLogger(runLogger).Named("firefly")

	solver, err := firefly.NewSolver(cfg)
	if err != nil {
		return state.finish(StatusFailed, apperrors.Wrap(err, "swarm initialization failed").
			WithOperation("new solver").
			WithComponent("firefly"))
	}
	state.initialized(solver.Best())

	for !solver.Done() {
		if state.ctx.Err() != nil {
			return state.finish(StatusCancelled, nil)
		}
		if err := solver.Step(); err != nil {
			return state.finish(StatusFailed, apperrors.Wrapf(err, "generation %d failed", solver.Generation()).
				WithOperation("step").
				WithComponent("firefly"))
		}

		latest, _ := solver.Latest()
		best := solver.Best()
		state.record(latest, best, solver.Generation())
		s.metrics.Generation(state.ID, state.Objective, best.Light())
	}
	return state.finish(StatusCompleted, nil)
}
