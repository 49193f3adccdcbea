package metrics

import (
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	fetches           *prom.CounterVec
	cacheWriteFailure *prom.CounterVec
	purged            prom.Counter
	resyncs           *prom.CounterVec
	overdue           prom.Counter
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs and registers the collectors on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.fetches = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "solo",
			Subsystem: "agent",
			Name:      "fetches_total",
			Help:      "Agent fetches by strategy and outcome",
		}, []string{"strategy", "outcome"})
		pr.cacheWriteFailure = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "solo",
			Subsystem: "agent",
			Name:      "cache_write_failures_total",
			Help:      "Swallowed cache write failures by driver",
		}, []string{"driver"})
		pr.purged = prom.NewCounter(prom.CounterOpts{
			Namespace: "solo",
			Subsystem: "agent",
			Name:      "generations_purged_total",
			Help:      "Cache generations deleted during activation",
		})
		pr.resyncs = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "solo",
			Name:      "resyncs_total",
			Help:      "Full-state resyncs by result",
		}, []string{"result"})
		pr.overdue = prom.NewCounter(prom.CounterOpts{
			Namespace: "solo",
			Name:      "overdue_notifications_total",
			Help:      "Overdue notifications raised by the deadline scanner",
		})
		reg.MustRegister(pr.fetches, pr.cacheWriteFailure, pr.purged, pr.resyncs, pr.overdue)
	})
	return pr
}

func (p *PrometheusRecorder) IncFetch(strategy string, outcome FetchOutcome) {
	if p == nil || p.fetches == nil {
		return
	}
	p.fetches.WithLabelValues(strategy, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncCacheWriteFailure(driver string) {
	if p == nil || p.cacheWriteFailure == nil {
		return
	}
	p.cacheWriteFailure.WithLabelValues(driver).Inc()
}

func (p *PrometheusRecorder) AddGenerationsPurged(n int) {
	if p == nil || p.purged == nil || n <= 0 {
		return
	}
	p.purged.Add(float64(n))
}

func (p *PrometheusRecorder) IncResync(success bool) {
	if p == nil || p.resyncs == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.resyncs.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) IncOverdue() {
	if p == nil || p.overdue == nil {
		return
	}
	p.overdue.Inc()
}
