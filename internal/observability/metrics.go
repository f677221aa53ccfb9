package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	DialogueTurns       *prometheus.CounterVec
	RequestsEnqueued    *prometheus.CounterVec
	SideEffectFailures  *prometheus.CounterVec
	FulfillmentOutcomes *prometheus.CounterVec
	DispatchLatency     prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics registers the instruments on reg. Pass prometheus.NewRegistry()
// in tests to keep registrations isolated.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DialogueTurns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialogue_turns_total",
			Help:      "Dialogue turns by intent kind and resulting dialog state.",
		}, []string{"intent", "state"}),
		RequestsEnqueued: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_enqueued_total",
			Help:      "Recommendation requests placed on the queue by source.",
		}, []string{"source"}),
		SideEffectFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialogue_side_effect_failures_total",
			Help:      "Swallowed state store and queue failures during dialogue turns.",
		}, []string{"operation"}),
		FulfillmentOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fulfillment_outcomes_total",
			Help:      "Fulfillment poll cycle outcomes.",
		}, []string{"outcome"}),
		DispatchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fulfillment_dispatch_latency_ms",
			Help:      "Time from enqueue to successful notification dispatch in milliseconds.",
			Buckets:   []float64{100, 500, 1000, 5000, 15000, 60000, 300000},
		}),
		gatherer: reg,
	}
}

func (m *Metrics) ObserveTurn(intent, state string) {
	if m == nil {
		return
	}
	m.DialogueTurns.WithLabelValues(intent, state).Inc()
}

func (m *Metrics) ObserveEnqueued(source string) {
	if m == nil {
		return
	}
	m.RequestsEnqueued.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveSideEffectFailure(operation string) {
	if m == nil {
		return
	}
	m.SideEffectFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveFulfillment(outcome string) {
	if m == nil {
		return
	}
	m.FulfillmentOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDispatchLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.DispatchLatency.Observe(float64(d.Milliseconds()))
}

// Handler serves the registry the metrics were created on.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
