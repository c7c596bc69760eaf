// Package server exposes firefly optimization runs over HTTP and JSON-RPC 2.0.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/copyleftdev/firefly/internal/config"
	"github.com/copyleftdev/firefly/internal/logging"
	"github.com/copyleftdev/firefly/internal/metrics"
	"github.com/copyleftdev/firefly/internal/optimization"
	"github.com/copyleftdev/firefly/internal/visualize"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Server implements the HTTP and JSON-RPC server for the optimization service.
// It manages optimization jobs and provides endpoints to start, monitor, and cancel them.
type Server struct {
	cfg      *config.Config
	logger   Logger
	metrics  *metrics.Collector
	renderer *visualize.Renderer
	executor *executor

	// Optimization state management
	optimizations   map[string]*OptimizationState
	optimizationsMu sync.RWMutex // Protects the optimizations map

	closeOnce sync.Once
}

// NewServer creates a new server instance with the given config and logger.
// A nil collector records into unregistered metrics.
func NewServer(cfg *config.Config, logger Logger, collector *metrics.Collector) *Server {
	if collector == nil {
		collector = metrics.NewCollector(nil)
	}
	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       collector,
		renderer:      visualize.NewRenderer(),
		executor:      newExecutor(cfg.Optimization.WorkerCount, cfg.Optimization.QueueSize),
		optimizations: make(map[string]*OptimizationState),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/optimization/{id}", s.handleCancel)
		r.Get("/optimization/{id}/plot", s.handlePlot)
		r.Get("/optimization/{id}/convergence", s.handleConvergence)
		r.Get("/benchmarks", s.handleBenchmarks)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// Start validates req and queues a new run.
func (s *Server) Start(req *OptimizeRequest) (*StartResponse, error) {
	solverCfg, err := req.solverConfig(s.cfg)
	if err != nil {
		return nil, err
	}

	state := newOptimizationState(uuid.NewString(), req.Objective, solverCfg)

	s.optimizationsMu.Lock()
	s.optimizations[state.ID] = state
	s.optimizationsMu.Unlock()

	if err := s.executor.submit(func() { s.runOptimization(state) }); err != nil {
		s.optimizationsMu.Lock()
		delete(s.optimizations, state.ID)
		s.optimizationsMu.Unlock()
		state.cancel()
		s.metrics.RunRejected(state.Objective, "rejected")
		return nil, err
	}

	s.logger.Info("Optimization queued", map[string]interface{}{
		"optimization_id": state.ID,
		"objective":       state.Objective,
		"dimension":       solverCfg.Dimension,
		"population":      solverCfg.PopulationSize,
		"max_generations": solverCfg.MaxGenerations,
	})
	return &StartResponse{ID: state.ID, Status: StatusPending}, nil
}

// Lookup returns the state of the run with the given ID.
func (s *Server) Lookup(id string) (*OptimizationState, error) {
	s.optimizationsMu.RLock()
	defer s.optimizationsMu.RUnlock()

	state, ok := s.optimizations[id]
	if !ok {
		return nil, notFound(id)
	}
	return state, nil
}

// Cancel stops a pending or running run. A running run stops after its
// current generation.
func (s *Server) Cancel(id string) error {
	state, err := s.Lookup(id)
	if err != nil {
		return err
	}
	if err := state.requestCancel(); err != nil {
		return err
	}

	s.logger.Info("Optimization cancelled", map[string]interface{}{
		"optimization_id": id,
	})
	return nil
}

// Close cancels every unfinished run and waits for the workers to exit.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.optimizationsMu.RLock()
		for _, state := range s.optimizations {
			state.cancel()
		}
		s.optimizationsMu.RUnlock()

		s.executor.close()
	})
	return nil
}

// handleOptimize handles POST /api/v1/optimize.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": fmt.Sprintf("Invalid request body: %v", err),
		})
		return
	}

	result, err := s.Start(&req)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusAccepted, result)
}

// handleStatus handles GET /api/v1/status/{id}. ?history=full adds every
// agent of every generation.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, err := s.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state.view(r.URL.Query().Get("history") == "full"))
}

// handleCancel handles DELETE /api/v1/optimization/{id}.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.Cancel(chi.URLParam(r, "id")); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "cancellation requested",
	})
}

// handlePlot handles GET /api/v1/optimization/{id}/plot. The latest
// generation is drawn unless ?generation=g selects another one.
func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	state, err := s.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	history := state.History()
	if len(history) == 0 {
		s.respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error": "no generation has completed yet",
		})
		return
	}

	index := len(history) - 1
	if g := r.URL.Query().Get("generation"); g != "" {
		index, err = strconv.Atoi(g)
		if err != nil || index < 0 || index >= len(history) {
			s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": fmt.Sprintf("generation must be an integer in [0, %d)", len(history)),
			})
			return
		}
	}

	var buf bytes.Buffer
	if err := s.renderer.Generation(&buf, history[index], state.Config.Bounds); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondPNG(w, &buf)
}

// handleConvergence handles GET /api/v1/optimization/{id}/convergence.
func (s *Server) handleConvergence(w http.ResponseWriter, r *http.Request) {
	state, err := s.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}

	var buf bytes.Buffer
	err = s.renderer.Convergence(&buf, state.History())
	if errors.Is(err, visualize.ErrEmptyHistory) {
		s.respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error": "no generation has completed yet",
		})
		return
	}
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondPNG(w, &buf)
}

// handleBenchmarks handles GET /api/v1/benchmarks.
func (s *Server) handleBenchmarks(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, benchmarkCatalogue())
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", map[string]interface{}{"error": err.Error()})
	}
	s.respondJSON(w, status, map[string]interface{}{
		"error":        err.Error(),
		"config_error": optimization.IsConfigError(err),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) respondPNG(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
