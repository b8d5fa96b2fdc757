package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/getmockd/stubdb/pkg/dbset"
	"github.com/getmockd/stubdb/pkg/logging"
	"github.com/getmockd/stubdb/pkg/mapping"
	"github.com/getmockd/stubdb/pkg/metrics"
	"github.com/getmockd/stubdb/pkg/resolver"
	"github.com/getmockd/stubdb/pkg/template"
)

// MaxRequestBodySize is the largest request body accepted (10MB).
const MaxRequestBodySize = 10 << 20

// Internal endpoint paths.
const (
	HealthPath  = "/__stubdb/health"
	ReadyPath   = "/__stubdb/ready"
	MetricsPath = "/__stubdb/metrics"
)

// Handler answers stub requests.
type Handler struct {
	resolver *resolver.Resolver
	datasets *dbset.Loader
	baseDir  string
	fallback string
	log      *slog.Logger
	metrics  *metrics.Server
	info     any
	start    time.Time

	once     sync.Once
	pipeline *template.Pipeline
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithBaseDir sets the directory relative response files are read from.
func WithBaseDir(dir string) HandlerOption {
	return func(h *Handler) { h.baseDir = dir }
}

// WithDatasetFallback sets the server-wide dataset fallback.
func WithDatasetFallback(fallback string) HandlerOption {
	return func(h *Handler) { h.fallback = fallback }
}

// WithLogger sets the request logger.
func WithLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) { h.log = logging.WithComponent(log, "engine") }
}

// WithMetrics records request and dataset metrics and serves them on MetricsPath.
func WithMetrics(m *metrics.Server) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// WithDebugInfo sets the configuration echoed by the debug envelope on "/".
func WithDebugInfo(info any) HandlerOption {
	return func(h *Handler) { h.info = info }
}

// NewHandler serves the mappings of res. Requests that reach a mapping wait
// until datasets has finished loading; a nil loader means no datasets.
func NewHandler(res *resolver.Resolver, datasets *dbset.Loader, opts ...HandlerOption) *Handler {
	h := &Handler{
		resolver: res,
		datasets: datasets,
		fallback: mapping.FallbackEmpty,
		log:      logging.Nop(),
		start:    time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.datasets == nil {
		h.datasets = dbset.LoadAsync(context.Background(), "")
	}
	h.metrics.SetMappings(res.Len())
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case HealthPath:
		h.handleHealth(w, r)
		return
	case ReadyPath:
		h.handleReady(w, r)
		return
	case MetricsPath:
		h.handleMetrics(w, r)
		return
	}
	h.serveStub(w, r)
}

func (h *Handler) serveStub(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w}
	var mappingID string

	defer func() {
		if p := recover(); p != nil {
			h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "panic", fmt.Sprint(p))
			if !rec.wroteHeader {
				rec.WriteHeader(http.StatusInternalServerError)
			}
		}
		if rec.abandoned {
			return
		}
		elapsed := time.Since(start)
		h.metrics.ObserveRequest(r.Method, rec.status, mappingID, elapsed)
		h.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"mapping", mappingID,
			"duration_ms", elapsed.Milliseconds(),
		)
	}()

	body, err := io.ReadAll(http.MaxBytesReader(rec, r.Body, MaxRequestBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rec.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		h.abandon(rec, r, err)
		return
	}

	req := resolver.NewRequest(r, body)
	debug := r.URL.Query().Has(resolver.DebugParam)

	match, ok := h.resolver.Resolve(req)
	if !ok {
		if debug {
			env := newEnvelope(req, nil)
			if r.URL.Path == "/" {
				h.addServerInfo(env)
			}
			writeEnvelope(rec, http.StatusNotFound, env)
			return
		}
		rec.WriteHeader(http.StatusNotFound)
		return
	}
	mappingID = match.Mapping.ID

	pipeline, err := h.pipelineFor(r.Context())
	if err != nil {
		if r.Context().Err() != nil {
			h.abandon(rec, r, err)
			return
		}
		h.log.Error("datasets unavailable", "error", err)
		rec.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	resp := Assemble(match.Mapping, h.baseDir)
	if resp.BodyMissing {
		h.log.Warn("response file not readable", "mapping", mappingID, "file", match.Mapping.Response.File)
	}
	if !wait(r.Context(), resp.Latency) {
		h.abandon(rec, r, r.Context().Err())
		return
	}

	// Markers are stamped after the delay so they reflect send time.
	refined := pipeline.Render(resp.Template, template.NewInput(req, match))

	if debug {
		env := newEnvelope(req, match)
		env.Response = &debugResponse{
			Status:  resp.Status,
			Headers: resp.Headers,
			Raw:     resp.Template,
			Refined: refined,
		}
		writeEnvelope(rec, resp.Status, env)
		return
	}

	header := rec.Header()
	for _, hd := range resp.Headers {
		header.Set(hd.Name, hd.Value)
	}
	rec.WriteHeader(resp.Status)
	_, _ = io.WriteString(rec, refined)
}

// pipelineFor waits for the datasets and builds the pipeline on first use.
func (h *Handler) pipelineFor(ctx context.Context) (*template.Pipeline, error) {
	store, err := h.datasets.Store(ctx)
	if err != nil {
		return nil, err
	}
	h.once.Do(func() {
		h.pipeline = template.New(store,
			template.WithDatasetFallback(h.fallback),
			template.WithLogger(h.log),
		)
		for _, t := range store.Tables() {
			h.metrics.SetDatasetRows(t.Name(), t.Len())
		}
	})
	return h.pipeline, nil
}

func (h *Handler) abandon(rec *statusRecorder, r *http.Request, err error) {
	rec.abandoned = true
	h.log.Debug("request abandoned", "method", r.Method, "path", r.URL.Path, "error", err)
}

// statusRecorder remembers the status written through it.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	abandoned   bool
}

func (w *statusRecorder) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
