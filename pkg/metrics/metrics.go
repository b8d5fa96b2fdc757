package metrics

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrLabelCountMismatch is returned when label values do not match the declared labels.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// ErrNegativeCounterValue is returned when a counter would decrease.
var ErrNegativeCounterValue = errors.New("counter cannot be decreased")

// ErrDuplicateMetric is reported when two metrics share a name.
var ErrDuplicateMetric = errors.New("duplicate metric name")

// MetricType is the Prometheus TYPE of a metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric is implemented by Counter, Gauge and Histogram.
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	Collect() []Sample
}

// Sample is one exposition line.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// atomicFloat64 stores float64 bits in a uint64.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Load() float64 { return math.Float64frombits(a.bits.Load()) }

func (a *atomicFloat64) Store(v float64) { a.bits.Store(math.Float64bits(v)) }

func (a *atomicFloat64) Add(delta float64) {
	for {
		old := a.bits.Load()
		if a.bits.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+delta)) {
			return
		}
	}
}

// family holds one series per label combination.
type family[S any] struct {
	name       string
	help       string
	labelNames []string
	newSeries  func() *S

	mu     sync.RWMutex
	series map[string]*labeled[S]
}

type labeled[S any] struct {
	labels map[string]string
	s      *S
}

func (f *family[S]) init(name, help string, labelNames []string, newSeries func() *S) {
	f.name = name
	f.help = help
	f.labelNames = labelNames
	f.newSeries = newSeries
	f.series = make(map[string]*labeled[S])
}

func (f *family[S]) Name() string { return f.name }

func (f *family[S]) Help() string { return f.help }

func (f *family[S]) get(values []string) (*S, error) {
	if len(values) != len(f.labelNames) {
		return nil, fmt.Errorf("%w: %s expects %d labels, got %d", ErrLabelCountMismatch, f.name, len(f.labelNames), len(values))
	}
	key := strings.Join(values, "\x00")

	f.mu.RLock()
	l, ok := f.series[key]
	f.mu.RUnlock()
	if ok {
		return l.s, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok = f.series[key]; !ok {
		labels := make(map[string]string, len(values))
		for i, n := range f.labelNames {
			labels[n] = values[i]
		}
		l = &labeled[S]{labels: labels, s: f.newSeries()}
		f.series[key] = l
	}
	return l.s, nil
}

// each visits series ordered by label values.
func (f *family[S]) each(fn func(labels map[string]string, s *S)) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, k := range slices.Sorted(maps.Keys(f.series)) {
		fn(f.series[k].labels, f.series[k].s)
	}
}

// Counter only goes up.
type Counter struct {
	family[atomicFloat64]
}

// CounterVec is one labelled counter series.
type CounterVec struct{ v *atomicFloat64 }

// Type implements Metric.
func (c *Counter) Type() MetricType { return MetricTypeCounter }

// WithLabels returns the series for the given label values.
func (c *Counter) WithLabels(values ...string) (*CounterVec, error) {
	v, err := c.get(values)
	if err != nil {
		return nil, err
	}
	return &CounterVec{v: v}, nil
}

// Inc adds one to an unlabelled counter.
func (c *Counter) Inc() error { return c.Add(1) }

// Add adds delta to an unlabelled counter.
func (c *Counter) Add(delta float64) error {
	vec, err := c.WithLabels()
	if err != nil {
		return err
	}
	return vec.Add(delta)
}

// Collect implements Metric.
func (c *Counter) Collect() []Sample {
	var out []Sample
	c.each(func(labels map[string]string, v *atomicFloat64) {
		out = append(out, Sample{Name: c.name, Labels: labels, Value: v.Load()})
	})
	return out
}

// Inc adds one.
func (v *CounterVec) Inc() error { return v.Add(1) }

// Add adds delta, which must not be negative.
func (v *CounterVec) Add(delta float64) error {
	if delta < 0 {
		return ErrNegativeCounterValue
	}
	v.v.Add(delta)
	return nil
}

// Gauge can go up and down.
type Gauge struct {
	family[atomicFloat64]
}

// GaugeVec is one labelled gauge series.
type GaugeVec struct{ v *atomicFloat64 }

// Type implements Metric.
func (g *Gauge) Type() MetricType { return MetricTypeGauge }

// WithLabels returns the series for the given label values.
func (g *Gauge) WithLabels(values ...string) (*GaugeVec, error) {
	v, err := g.get(values)
	if err != nil {
		return nil, err
	}
	return &GaugeVec{v: v}, nil
}

// Set sets an unlabelled gauge.
func (g *Gauge) Set(value float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Set(value)
	return nil
}

// Add adds delta to an unlabelled gauge.
func (g *Gauge) Add(delta float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Add(delta)
	return nil
}

// Collect implements Metric.
func (g *Gauge) Collect() []Sample {
	var out []Sample
	g.each(func(labels map[string]string, v *atomicFloat64) {
		out = append(out, Sample{Name: g.name, Labels: labels, Value: v.Load()})
	})
	return out
}

// Set replaces the value.
func (v *GaugeVec) Set(value float64) { v.v.Store(value) }

// Add adds delta.
func (v *GaugeVec) Add(delta float64) { v.v.Add(delta) }

// Histogram counts observations into cumulative buckets.
type Histogram struct {
	family[histogramSeries]
	bounds []float64
}

type histogramSeries struct {
	counts []atomic.Uint64
	sum    atomicFloat64
	count  atomic.Uint64
}

// HistogramVec is one labelled histogram series.
type HistogramVec struct {
	s      *histogramSeries
	bounds []float64
}

// Type implements Metric.
func (h *Histogram) Type() MetricType { return MetricTypeHistogram }

// WithLabels returns the series for the given label values.
func (h *Histogram) WithLabels(values ...string) (*HistogramVec, error) {
	s, err := h.get(values)
	if err != nil {
		return nil, err
	}
	return &HistogramVec{s: s, bounds: h.bounds}, nil
}

// Observe records value in an unlabelled histogram.
func (h *Histogram) Observe(value float64) error {
	vec, err := h.WithLabels()
	if err != nil {
		return err
	}
	vec.Observe(value)
	return nil
}

// Collect implements Metric.
func (h *Histogram) Collect() []Sample {
	var out []Sample
	h.each(func(labels map[string]string, s *histogramSeries) {
		var cumulative uint64
		for i, bound := range h.bounds {
			cumulative += s.counts[i].Load()
			bl := make(map[string]string, len(labels)+1)
			for k, v := range labels {
				bl[k] = v
			}
			bl["le"] = formatFloat(bound)
			out = append(out, Sample{Name: h.name + "_bucket", Labels: bl, Value: float64(cumulative)})
		}
		out = append(out,
			Sample{Name: h.name + "_sum", Labels: labels, Value: s.sum.Load()},
			Sample{Name: h.name + "_count", Labels: labels, Value: float64(s.count.Load())},
		)
	})
	return out
}

// Observe records value.
func (v *HistogramVec) Observe(value float64) {
	for i, bound := range v.bounds {
		if value <= bound {
			v.s.counts[i].Add(1)
			break
		}
	}
	v.s.sum.Add(value)
	v.s.count.Add(1)
}

// DefaultBuckets are request duration buckets in seconds.
var DefaultBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Registry holds registered metrics in registration order.
type Registry struct {
	mu      sync.RWMutex
	metrics []Metric
	names   map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// NewCounter registers a counter.
func (r *Registry) NewCounter(name, help string, labels ...string) *Counter {
	c := &Counter{}
	c.init(name, help, labels, func() *atomicFloat64 { return new(atomicFloat64) })
	r.register(c)
	return c
}

// NewGauge registers a gauge.
func (r *Registry) NewGauge(name, help string, labels ...string) *Gauge {
	g := &Gauge{}
	g.init(name, help, labels, func() *atomicFloat64 { return new(atomicFloat64) })
	r.register(g)
	return g
}

// NewHistogram registers a histogram. A +Inf bucket is always added.
func (r *Registry) NewHistogram(name, help string, buckets []float64, labels ...string) *Histogram {
	bounds := slices.Clone(buckets)
	slices.Sort(bounds)
	if len(bounds) == 0 || !math.IsInf(bounds[len(bounds)-1], 1) {
		bounds = append(bounds, math.Inf(1))
	}
	h := &Histogram{bounds: bounds}
	h.init(name, help, labels, func() *histogramSeries {
		return &histogramSeries{counts: make([]atomic.Uint64, len(bounds))}
	})
	r.register(h)
	return h
}

// register panics on a duplicate name since the exposition would be invalid.
func (r *Registry) register(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[m.Name()]; exists {
		panic(fmt.Sprintf("%s: %s", ErrDuplicateMetric, m.Name()))
	}
	r.names[m.Name()] = struct{}{}
	r.metrics = append(r.metrics, m)
}

// WriteTo writes every metric with samples in the text format.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	r.mu.RLock()
	metrics := slices.Clone(r.metrics)
	r.mu.RUnlock()

	var sb strings.Builder
	for _, m := range metrics {
		samples := m.Collect()
		if len(samples) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "# HELP %s %s\n", m.Name(), escape(m.Help(), false))
		fmt.Fprintf(&sb, "# TYPE %s %s\n", m.Name(), m.Type())
		for _, s := range samples {
			sb.WriteString(s.Name)
			if len(s.Labels) > 0 {
				sb.WriteByte('{')
				sb.WriteString(formatLabels(s.Labels))
				sb.WriteByte('}')
			}
			sb.WriteByte(' ')
			sb.WriteString(formatFloat(s.Value))
			sb.WriteByte('\n')
		}
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// Handler serves the registry.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = r.WriteTo(w)
	})
}

func formatLabels(labels map[string]string) string {
	keys := slices.Sorted(maps.Keys(labels))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + `="` + escape(labels[k], true) + `"`
	}
	return strings.Join(parts, ",")
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func escape(s string, quote bool) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	if quote {
		s = strings.ReplaceAll(s, `"`, `\"`)
	}
	return s
}
