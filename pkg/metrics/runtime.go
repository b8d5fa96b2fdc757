package metrics

import (
	"runtime"
	"time"
)

// RuntimeCollector samples Go runtime statistics into gauges.
type RuntimeCollector struct {
	goroutines *Gauge
	heapAlloc  *Gauge
	heapSys    *Gauge
	gcCycles   *Gauge
	uptime     *Gauge

	start time.Time
}

// NewRuntimeCollector registers the runtime gauges on r.
func NewRuntimeCollector(r *Registry) *RuntimeCollector {
	return &RuntimeCollector{
		start:      time.Now(),
		goroutines: r.NewGauge("go_goroutines", "Number of goroutines that currently exist"),
		heapAlloc:  r.NewGauge("go_memstats_heap_alloc_bytes", "Number of heap bytes allocated and still in use"),
		heapSys:    r.NewGauge("go_memstats_heap_sys_bytes", "Number of heap bytes obtained from system"),
		gcCycles:   r.NewGauge("go_gc_cycles_total", "Total number of completed GC cycles"),
		uptime:     r.NewGauge("stubdb_uptime_seconds", "Seconds since the server started"),
	}
}

// Uptime returns the time since the collector was created.
func (rc *RuntimeCollector) Uptime() time.Duration {
	return time.Since(rc.start)
}

// Collect refreshes every gauge.
func (rc *RuntimeCollector) Collect() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	_ = rc.uptime.Set(rc.Uptime().Seconds())
	_ = rc.goroutines.Set(float64(runtime.NumGoroutine()))
	_ = rc.heapAlloc.Set(float64(mem.HeapAlloc))
	_ = rc.heapSys.Set(float64(mem.HeapSys))
	_ = rc.gcCycles.Set(float64(mem.NumGC))
}

// Start collects now and then every interval until the returned stop
// function is called.
func (rc *RuntimeCollector) Start(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	rc.Collect()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rc.Collect()
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}
