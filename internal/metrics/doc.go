// Package metrics provides observability hooks for the caching agent and
// the client sync loop.
//
// Components hold a Recorder and default to NoopRecorder, so metrics never
// need nil checks at call sites. The `solo agent` command swaps in a
// PrometheusRecorder and serves it through HTTPHandler on /metrics.
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
