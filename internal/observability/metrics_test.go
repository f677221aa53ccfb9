package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveTurn("greeting", "Fulfilled")
	m.ObserveEnqueued("dialogue")
	m.ObserveSideEffectFailure("enqueue")
	m.ObserveFulfillment("dispatched")
	m.ObserveDispatchLatency(time.Second)
}

func TestMetricsCountAndServe(t *testing.T) {
	m := NewMetrics("concierge", prometheus.NewRegistry())
	m.ObserveTurn("dining_suggestions", "InProgress")
	m.ObserveTurn("dining_suggestions", "InProgress")
	m.ObserveFulfillment("dispatched")

	if got := testutil.ToFloat64(m.DialogueTurns.WithLabelValues("dining_suggestions", "InProgress")); got != 2 {
		t.Fatalf("dialogue turns = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "concierge_fulfillment_outcomes_total") {
		t.Fatalf("metrics output missing fulfillment counter")
	}
}
