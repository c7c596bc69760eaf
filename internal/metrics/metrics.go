// Package metrics exposes prometheus collectors for optimization runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "firefly"

// Collector records run lifecycle and per-generation progress.
type Collector struct {
	runs        *prometheus.CounterVec
	active      prometheus.Gauge
	generations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	bestLight   *prometheus.GaugeVec
}

// NewCollector creates the collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Optimization runs by objective and final status.",
		}, []string{"objective", "status"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_active",
			Help:      "Optimization runs currently executing.",
		}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generations completed across all runs.",
		}, []string{"objective"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of finished runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"objective"}),
		bestLight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_light",
			Help:      "Best objective value found so far by a live run.",
		}, []string{"run_id"}),
	}

	if reg != nil {
		reg.MustRegister(c.runs, c.active, c.generations, c.duration, c.bestLight)
	}
	return c
}

// RunStarted marks a run as executing.
func (c *Collector) RunStarted() {
	c.active.Inc()
}

// Generation records one completed generation and the run's current best.
func (c *Collector) Generation(runID, objective string, bestLight float64) {
	c.generations.WithLabelValues(objective).Inc()
	c.bestLight.WithLabelValues(runID).Set(bestLight)
}

// RunFinished records the final status of a run that went through
// RunStarted and drops its best-light series.
func (c *Collector) RunFinished(runID, objective, status string, elapsed time.Duration) {
	c.active.Dec()
	c.runs.WithLabelValues(objective, status).Inc()
	c.duration.WithLabelValues(objective).Observe(elapsed.Seconds())
	c.bestLight.DeleteLabelValues(runID)
}

// RunRejected records a run that finished without ever executing, such as
// one cancelled while queued.
func (c *Collector) RunRejected(objective, status string) {
	c.runs.WithLabelValues(objective, status).Inc()
}
