// Package metrics records fit measurements with Prometheus.
//
// pkfit is a batch tool, so metrics are not scraped over HTTP. The recorder
// keeps a private registry and writes it in the text exposition format to a
// file, for the node_exporter textfile collector or for inspection.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bft-labs/pkfit/internal/domain"
)

// Recorder implements ports.FitRecorder.
type Recorder struct {
	registry *prometheus.Registry

	fits       *prometheus.CounterVec
	candidates *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	lastRun    prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pkfit_fits_total",
				Help: "Total number of grid-search fits by scope and outcome",
			},
			[]string{"scope", "outcome"},
		),
		candidates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pkfit_candidates_evaluated_total",
				Help: "Total number of (CL, V) candidates evaluated",
			},
			[]string{"scope"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pkfit_fit_duration_seconds",
				Help:    "Wall time of a single grid-search fit",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
			[]string{"scope"},
		),
		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pkfit_last_run_timestamp_seconds",
				Help: "Unix time of the last completed run",
			},
		),
	}
}

// ObserveFit records one fit.
func (r *Recorder) ObserveFit(subjectID string, candidates int, elapsed time.Duration, kind string) {
	scope := "subject"
	if subjectID == domain.PooledID {
		scope = "pooled"
	}
	outcome := "ok"
	if kind != "" {
		outcome = kind
	}

	r.fits.WithLabelValues(scope, outcome).Inc()
	r.candidates.WithLabelValues(scope).Add(float64(candidates))
	r.duration.WithLabelValues(scope).Observe(elapsed.Seconds())
}

// MarkRun stamps the completion time of a run.
func (r *Recorder) MarkRun(at time.Time) {
	r.lastRun.Set(float64(at.Unix()))
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
