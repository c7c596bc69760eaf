package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/copyleftdev/firefly/internal/optimization/firefly"
)

// Run statuses. completed, failed and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

func isTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// OptimizationState represents the state of an optimization job.
// It tracks the progress, status, and results of a firefly run.
// The runner goroutine publishes copies of the solver state after every
// generation, so readers never touch the solver itself.
type OptimizationState struct {
	ID        string
	Objective string
	Config    firefly.Config
	StartTime time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	status      string
	endTime     *time.Time
	lastUpdated time.Time
	generation  int
	best        *firefly.AgentSnapshot
	history     []firefly.SwarmSnapshot
	err         error
}

func newOptimizationState(id, objective string, cfg firefly.Config) *OptimizationState {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	return &OptimizationState{
		ID:          id,
		Objective:   objective,
		Config:      cfg,
		StartTime:   now,
		ctx:         ctx,
		cancel:      cancel,
		status:      StatusPending,
		lastUpdated: now,
		history:     make([]firefly.SwarmSnapshot, 0, cfg.MaxGenerations),
	}
}

// Status returns the current status.
func (o *OptimizationState) Status() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// Err returns the error that failed the run, if any.
func (o *OptimizationState) Err() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.err
}

// History returns the generation snapshots published so far.
func (o *OptimizationState) History() []firefly.SwarmSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]firefly.SwarmSnapshot(nil), o.history...)
}

// begin moves a pending run to running. It reports false when the run was
// cancelled while queued.
func (o *OptimizationState) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != StatusPending || o.ctx.Err() != nil {
		return false
	}
	o.status = StatusRunning
	o.lastUpdated = time.Now()
	return true
}

// initialized records the best agent of the freshly built swarm.
func (o *OptimizationState) initialized(best firefly.AgentSnapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.best = &best
	o.lastUpdated = time.Now()
}

// record publishes one completed generation.
func (o *OptimizationState) record(snapshot firefly.SwarmSnapshot, best firefly.AgentSnapshot, generation int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append(o.history, snapshot)
	o.best = &best
	o.generation = generation
	o.lastUpdated = time.Now()
}

// finish moves the run into a terminal status unless it already is in one.
func (o *OptimizationState) finish(status string, err error) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finishLocked(status, err)
	return o.status
}

// finishLocked is finish with o.mu already held.
func (o *OptimizationState) finishLocked(status string, err error) {
	if !isTerminal(o.status) {
		o.status = status
		o.err = err
		now := time.Now()
		o.endTime = &now
		o.lastUpdated = now
	}
	o.cancel()
}

// requestCancel cancels a run that has not finished yet.
func (o *OptimizationState) requestCancel() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if isTerminal(o.status) {
		return fmt.Errorf("%w: optimization %s is %s", ErrNotCancellable, o.ID, o.status)
	}
	o.finishLocked(StatusCancelled, nil)
	return nil
}

// view copies the state into its wire form. Agent positions are included
// only when full is set.
func (o *OptimizationState) view(full bool) *StatusResponse {
	o.mu.RLock()
	defer o.mu.RUnlock()

	resp := &StatusResponse{
		ID:             o.ID,
		Status:         o.status,
		Objective:      o.Objective,
		Mode:           o.Config.Mode.String(),
		Generation:     o.generation,
		MaxGenerations: o.Config.MaxGenerations,
		Progress:       progress(o.generation, o.Config.MaxGenerations, o.status),
		StartTime:      o.StartTime.Format(time.RFC3339),
		LastUpdate:     o.lastUpdated.Format(time.RFC3339),
	}
	if o.endTime != nil {
		resp.EndTime = o.endTime.Format(time.RFC3339)
	}
	if o.err != nil {
		resp.Error = o.err.Error()
	}
	if o.best != nil {
		resp.BestSolution = solutionView(*o.best)
	}
	if len(o.history) > 0 {
		resp.History = make([]GenerationView, len(o.history))
		for i, snap := range o.history {
			resp.History[i] = generationView(snap, full)
		}
	}
	return resp
}

func progress(generation, maxGenerations int, status string) float64 {
	if maxGenerations == 0 {
		if status == StatusCompleted {
			return 1
		}
		return 0
	}
	return float64(generation) / float64(maxGenerations)
}
