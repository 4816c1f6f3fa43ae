package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pet-companion-chat/internal/domain/lifecycle"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(body)
}

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Evolved(1, 2)
	m.Evolved(1, 2)
	m.RanAway()
	m.Reconciled(lifecycle.Optimistic)
	m.RateLimited()
	m.ObserveRequest("/users/{name}", http.MethodGet, 404, 20*time.Millisecond)
	m.ObserveRequest("", http.MethodGet, 404, time.Millisecond)

	out := scrape(t, m)
	for _, want := range []string{
		`pet_evolutions_total{from="1",to="2"} 2`,
		`pet_run_aways_total 1`,
		`pet_reconciliations_total{consistency="optimistic"} 1`,
		`chat_rate_limited_total 1`,
		`http_requests_total{method="GET",route="/users/{name}",status="404"} 1`,
		`http_requests_total{method="GET",route="unmatched",status="404"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in exposition, got:\n%s", want, out)
		}
	}
}

func TestMetrics_OwnRegistryByDefault(t *testing.T) {
	// dos instancias no deben chocar al registrar
	a, b := New(nil), New(nil)
	a.RanAway()

	if !strings.Contains(scrape(t, a), "pet_run_aways_total 1") {
		t.Fatalf("expected the counter on the first registry")
	}
	if !strings.Contains(scrape(t, b), "pet_run_aways_total 0") {
		t.Fatalf("expected an independent registry")
	}
}
