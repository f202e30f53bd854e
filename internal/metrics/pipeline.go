// Package metrics holds the Prometheus collectors for the operation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeSuccess labels runs that produced their artifacts.
const OutcomeSuccess = "success"

// Pipeline records per-operation outcomes, latency and output volume.
// A nil *Pipeline is valid and records nothing.
type Pipeline struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	artifactBytes *prometheus.CounterVec
}

// NewPipeline creates the collectors and registers them on reg.
func NewPipeline(reg prometheus.Registerer) (*Pipeline, error) {
	p := &Pipeline{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdf_operations_total",
				Help: "Total number of pipeline runs by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdf_operation_duration_seconds",
				Help:    "Wall time of pipeline runs, staging to cleanup.",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		artifactBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdf_artifact_bytes_total",
				Help: "Bytes written to the outbound area by operation.",
			},
			[]string{"operation"},
		),
	}

	for _, c := range []prometheus.Collector{p.operations, p.duration, p.artifactBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Observe records one finished run.
func (p *Pipeline) Observe(operation, outcome string, d time.Duration) {
	if p == nil {
		return
	}
	p.operations.WithLabelValues(operation, outcome).Inc()
	p.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// AddArtifactBytes counts n bytes persisted for operation.
func (p *Pipeline) AddArtifactBytes(operation string, n int64) {
	if p == nil || n <= 0 {
		return
	}
	p.artifactBytes.WithLabelValues(operation).Add(float64(n))
}
