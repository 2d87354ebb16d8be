package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSettlement(t *testing.T) {
	m := New()

	m.ObserveSettlement(OutcomeOK, 2, 3*time.Millisecond)
	m.ObserveSettlement(OutcomeOK, 0, time.Millisecond)
	m.ObserveSettlement(OutcomeUnknownMember, 0, time.Millisecond)

	if got := testutil.ToFloat64(m.settlements.WithLabelValues(OutcomeOK)); got != 2 {
		t.Errorf("ok computations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.settlements.WithLabelValues(OutcomeUnknownMember)); got != 1 {
		t.Errorf("unknown_member computations = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.transfers); got != 1 {
		t.Errorf("transfers histogram series = %d, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/settlements/group/{groupId}", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	want := `settleup_http_requests_total{method="GET",route="/settlements/group/{groupId}",status="200"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("metrics output missing %q", want)
	}
}
