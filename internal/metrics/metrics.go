// Package metrics records provider call outcomes and aggregation timings.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/celestiatrack/skyfeed/internal/logging"
)

// Provider request outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Sink receives instrumentation events from the aggregation pipeline.
type Sink interface {
	ProviderRequest(provider, outcome string, duration time.Duration)
	AggregateCompleted(duration time.Duration, events int, err error)
}

// Noop discards all instrumentation.
type Noop struct{}

func (Noop) ProviderRequest(string, string, time.Duration) {}
func (Noop) AggregateCompleted(time.Duration, int, error)  {}

// Prometheus exports pipeline metrics through a prometheus registry.
type Prometheus struct {
	providerRequests  *prometheus.CounterVec
	providerDuration  *prometheus.HistogramVec
	aggregateDuration prometheus.Histogram
	aggregateEvents   prometheus.Gauge
	aggregateErrors   prometheus.Counter
}

// NewPrometheus builds and registers the pipeline collectors. Registration
// conflicts are logged and the colliding collector keeps its first
// registration, so repeated construction in tests is harmless.
func NewPrometheus(reg prometheus.Registerer, log *logging.Logger) *Prometheus {
	p := &Prometheus{
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skyfeed_provider_requests_total",
			Help: "Provider requests by upstream and outcome.",
		}, []string{"provider", "outcome"}),
		providerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skyfeed_provider_request_seconds",
			Help:    "Provider request latency by upstream.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		aggregateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skyfeed_aggregate_seconds",
			Help:    "Wall time of one full feed aggregation.",
			Buckets: prometheus.DefBuckets,
		}),
		aggregateEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skyfeed_aggregate_events",
			Help: "Events produced by the most recent aggregation.",
		}),
		aggregateErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skyfeed_aggregate_errors_total",
			Help: "Aggregations that failed outright.",
		}),
	}

	for _, c := range []prometheus.Collector{
		p.providerRequests, p.providerDuration,
		p.aggregateDuration, p.aggregateEvents, p.aggregateErrors,
	} {
		if err := reg.Register(c); err != nil {
			log.Warn("metrics: %v", err)
		}
	}
	return p
}

func (p *Prometheus) ProviderRequest(provider, outcome string, duration time.Duration) {
	p.providerRequests.WithLabelValues(provider, outcome).Inc()
	p.providerDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (p *Prometheus) AggregateCompleted(duration time.Duration, events int, err error) {
	p.aggregateDuration.Observe(duration.Seconds())
	if err != nil {
		p.aggregateErrors.Inc()
		return
	}
	p.aggregateEvents.Set(float64(events))
}
