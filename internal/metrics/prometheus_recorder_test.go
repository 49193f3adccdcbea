package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncFetch("stale-while-populate", OutcomeNetwork)
	pr.IncFetch("stale-while-populate", OutcomeFallback503)
	pr.IncCacheWriteFailure("fs")
	pr.AddGenerationsPurged(2)
	pr.AddGenerationsPurged(-1)
	pr.IncResync(true)
	pr.IncResync(false)
	pr.IncOverdue()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) != 5 {
		t.Fatalf("metric families = %d, want 5", len(mfs))
	}
	if got := counterValue(t, pr.purged); got != 2 {
		t.Fatalf("purged = %v, want 2", got)
	}
	if got := counterValue(t, pr.fetches.WithLabelValues("stale-while-populate", "fallback_503")); got != 1 {
		t.Fatalf("fallback fetches = %v, want 1", got)
	}
}

func counterValue(t *testing.T, c prom.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncFetch("x", OutcomeCache)
	pr.IncResync(true)
	pr.IncOverdue()

	var noop Recorder = NoopRecorder{}
	noop.IncFetch("x", OutcomeError)
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncOverdue()

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "solo_overdue_notifications_total 1") {
		t.Fatalf("metrics body missing overdue counter:\n%s", body)
	}
}
