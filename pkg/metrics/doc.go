// Package metrics exposes stubdb counters, gauges and histograms in the
// Prometheus text format (text/plain; version=0.0.4).
//
// A Registry owns metrics and serves them over HTTP. Server metrics are
// grouped in a Server value, created once per process:
//
//	m := metrics.NewServer()
//	m.ObserveRequest("GET", 200, "users#0", 12*time.Millisecond)
//	m.SetDatasetRows("users", 1200)
//	http.Handle("/__stubdb/metrics", m.Registry.Handler())
//
// All metric types are safe for concurrent use.
package metrics
