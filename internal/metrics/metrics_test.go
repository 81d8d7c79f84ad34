package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrument_LabelsByRoutePattern(t *testing.T) {
	Register("test", "abc123")

	r := chi.NewRouter()
	r.Use(Instrument)
	r.Get("/api/v1/findings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/findings/{id}", "418"))
	for _, id := range []string{"FIND-001", "FIND-002"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/findings/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/findings/{id}", "418"))

	if after-before != 2 {
		t.Errorf("expected 2 requests under the route pattern, got %v", after-before)
	}
	if testutil.ToFloat64(httpInFlight) != 0 {
		t.Error("expected no in-flight requests")
	}
}

func TestRoutePattern_Unmatched(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	if got := RoutePattern(req); got != "unmatched" {
		t.Errorf("expected unmatched, got %q", got)
	}
}

func TestHandler_ExposesDomainCounters(t *testing.T) {
	Register("test", "abc123")
	FindingsSwept.Add(3)
	FindingTransitions.WithLabelValues("Aceptada").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"auditplus_findings_swept_overdue_total", "auditplus_finding_transitions_total", "auditplus_build_info"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
}
