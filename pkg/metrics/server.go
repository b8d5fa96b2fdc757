package metrics

import (
	"strconv"
	"time"
)

// Server groups the metrics recorded by the stub server.
type Server struct {
	Registry *Registry
	Runtime  *RuntimeCollector

	requests      *Counter
	duration      *Histogram
	datasetRows   *Gauge
	mappingsTotal *Gauge
}

// NewServer registers the stubdb metrics on a fresh registry.
func NewServer() *Server {
	r := NewRegistry()
	return &Server{
		Registry: r,
		requests: r.NewCounter("stubdb_requests_total",
			"Total number of stub requests", "method", "status", "mapping"),
		duration: r.NewHistogram("stubdb_request_duration_seconds",
			"Duration of stub requests in seconds, including configured latency", DefaultBuckets, "method"),
		datasetRows: r.NewGauge("stubdb_dataset_rows",
			"Rows loaded per dataset", "dataset"),
		mappingsTotal: r.NewGauge("stubdb_mappings_total",
			"Number of configured mappings"),
		Runtime: NewRuntimeCollector(r),
	}
}

// ObserveRequest records one served request. mapping is empty when nothing matched.
func (s *Server) ObserveRequest(method string, status int, mapping string, d time.Duration) {
	if s == nil {
		return
	}
	if mapping == "" {
		mapping = "none"
	}
	if vec, err := s.requests.WithLabels(method, strconv.Itoa(status), mapping); err == nil {
		_ = vec.Inc()
	}
	if vec, err := s.duration.WithLabels(method); err == nil {
		vec.Observe(d.Seconds())
	}
}

// SetDatasetRows records the row count of a dataset.
func (s *Server) SetDatasetRows(dataset string, rows int) {
	if s == nil {
		return
	}
	if vec, err := s.datasetRows.WithLabels(dataset); err == nil {
		vec.Set(float64(rows))
	}
}

// SetMappings records the number of configured mappings.
func (s *Server) SetMappings(n int) {
	if s == nil {
		return
	}
	_ = s.mappingsTotal.Set(float64(n))
}
