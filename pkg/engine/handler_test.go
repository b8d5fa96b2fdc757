package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/stubdb/pkg/dbset"
	"github.com/getmockd/stubdb/pkg/mapping"
	"github.com/getmockd/stubdb/pkg/metrics"
	"github.com/getmockd/stubdb/pkg/resolver"
)

func datasetDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.txt"), []byte("id|name\n42|Ada\n7|Alan\n"), 0o644))
	return dir
}

func newTestHandler(t *testing.T, set mapping.Set, opts ...HandlerOption) *Handler {
	t.Helper()
	res, err := resolver.New(set)
	require.NoError(t, err)
	loader := dbset.LoadAsync(context.Background(), datasetDir(t))
	return NewHandler(res, loader, opts...)
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestHandler_RendersMatchedMapping(t *testing.T) {
	h := newTestHandler(t, mapping.Set{{
		ID:      "user",
		Request: mapping.RequestSpec{Method: "GET", URL: "/users/:id"},
		Response: mapping.ResponseSpec{
			Status: 201,
			Headers: mapping.Headers{
				{Name: "Content-Type", Value: "application/json"},
				{Name: "X-Id", Value: "first"},
				{Name: "X-Id", Value: "second"},
			},
			Body: `{"id":"<<id>>","name":"##name##"}`,
		},
		DBSet: &mapping.DBSetRef{DB: "users", Key: "<<id>>"},
	}})

	rec := serve(h, "GET", "/users/42", "")
	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "second", rec.Header().Get("X-Id"))
	assert.Equal(t, `{"id":"42","name":"Ada"}`, rec.Body.String())
}

func TestHandler_FirstDeclaredWins(t *testing.T) {
	h := newTestHandler(t, mapping.Set{
		{ID: "ok", Request: mapping.RequestSpec{Method: "GET", URL: "/ping"}, Response: mapping.ResponseSpec{Status: 200, Body: "pong"}},
		{ID: "fail", Request: mapping.RequestSpec{Method: "GET", URL: "/ping"}, Response: mapping.ResponseSpec{Status: 500}},
	})
	for range 5 {
		rec := serve(h, "GET", "/ping", "")
		assert.Equal(t, 200, rec.Code)
		assert.Equal(t, "pong", rec.Body.String())
	}
}

func TestHandler_NoMatchIs404(t *testing.T) {
	h := newTestHandler(t, mapping.Set{
		{Request: mapping.RequestSpec{Method: "POST", URL: "/only-post"}},
	})
	rec := serve(h, "GET", "/only-post", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandler_MissingFileIs404(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "present.json"), []byte(`{"n":"<<n>>"}`), 0o644))

	h := newTestHandler(t, mapping.Set{
		{Request: mapping.RequestSpec{URL: "/present/:n"}, Response: mapping.ResponseSpec{Status: 202, File: "present.json"}},
		{Request: mapping.RequestSpec{URL: "/missing"}, Response: mapping.ResponseSpec{Status: 200, File: "missing.json"}},
	}, WithBaseDir(base))

	rec := serve(h, "GET", "/present/3", "")
	assert.Equal(t, 202, rec.Code)
	assert.Equal(t, `{"n":"3"}`, rec.Body.String())

	rec = serve(h, "GET", "/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = serve(h, "GET", "/missing?debug=true", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var env struct {
		Response struct {
			Status int `json:"status"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusNotFound, env.Response.Status)
}

func TestHandler_MarkersRenderedAfterLatency(t *testing.T) {
	h := newTestHandler(t, mapping.Set{{
		Request:  mapping.RequestSpec{URL: "/stamp"},
		Response: mapping.ResponseSpec{Body: "{{timestamp.unix_ms}}", Latency: 200},
	}})

	start := time.Now()
	rec := serve(h, "GET", "/stamp", "")
	done := time.Now()
	require.Equal(t, http.StatusOK, rec.Code)

	stamp, err := strconv.ParseInt(rec.Body.String(), 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stamp, start.Add(200*time.Millisecond).UnixMilli())
	assert.LessOrEqual(t, stamp, done.UnixMilli())
}

func TestHandler_PanicIs500(t *testing.T) {
	h := newTestHandler(t, mapping.Set{{Request: mapping.RequestSpec{URL: "/x"}}})
	h.resolver = nil // Resolve on a nil resolver panics

	rec := serve(h, "GET", "/x", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())

	h2 := newTestHandler(t, mapping.Set{{Request: mapping.RequestSpec{URL: "/x"}, Response: mapping.ResponseSpec{Body: "fine"}}})
	assert.Equal(t, "fine", serve(h2, "GET", "/x", "").Body.String(), "other handlers keep serving")
}

func TestHandler_BodyTooLarge(t *testing.T) {
	h := newTestHandler(t, mapping.Set{{Request: mapping.RequestSpec{URL: "/upload"}}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/upload", bytes.NewReader(make([]byte, MaxRequestBodySize+1))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandler_LatencyDoesNotBlockOthers(t *testing.T) {
	h := newTestHandler(t, mapping.Set{
		{Request: mapping.RequestSpec{URL: "/slow"}, Response: mapping.ResponseSpec{Body: "slow", Latency: 200}},
		{Request: mapping.RequestSpec{URL: "/fast"}, Response: mapping.ResponseSpec{Body: "fast"}},
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	type result struct {
		name string
		took time.Duration
	}
	results := make(chan result, 2)
	start := time.Now()

	var wg sync.WaitGroup
	for _, name := range []string{"slow", "fast"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(srv.URL + "/" + name)
			if !assert.NoError(t, err) {
				return
			}
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			assert.Equal(t, name, string(body))
			results <- result{name: name, took: time.Since(start)}
		}()
	}
	wg.Wait()
	close(results)

	got := map[string]time.Duration{}
	for r := range results {
		got[r.name] = r.took
	}
	require.Len(t, got, 2)
	assert.GreaterOrEqual(t, got["slow"], 200*time.Millisecond)
	assert.Less(t, got["fast"], got["slow"])
}

func TestHandler_LatencyAbandonedOnDisconnect(t *testing.T) {
	h := newTestHandler(t, mapping.Set{
		{Request: mapping.RequestSpec{URL: "/slow"}, Response: mapping.ResponseSpec{Body: "slow", Latency: 5000}},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest("GET", "/slow", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after the client went away")
	}
	assert.Empty(t, rec.Body.String())
}

func TestHandler_DebugEnvelope(t *testing.T) {
	h := newTestHandler(t, mapping.Set{{
		ID:       "user",
		Request:  mapping.RequestSpec{Method: "GET", URL: "/users/:id"},
		Response: mapping.ResponseSpec{Status: 203, Body: "name=##name## id=<<id>>"},
		DBSet:    &mapping.DBSetRef{DB: "users", Key: "<<id>>"},
	}}, WithDebugInfo(map[string]int{"port": 7777}))

	rec := serve(h, "GET", "/users/7?debug=true", "")
	assert.Equal(t, 203, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env struct {
		Request struct {
			URL string `json:"url"`
		} `json:"request"`
		MatchedMapping struct {
			ID string `json:"id"`
		} `json:"matchedMapping"`
		Captures map[string]string `json:"captures"`
		Response struct {
			Status  int    `json:"status"`
			Raw     string `json:"raw"`
			Refined string `json:"refined"`
		} `json:"response"`
		Hostname string `json:"hostname"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "/users/7", env.Request.URL)
	assert.Equal(t, "user", env.MatchedMapping.ID)
	assert.Equal(t, map[string]string{"id": "7"}, env.Captures)
	assert.Equal(t, 203, env.Response.Status)
	assert.Equal(t, "name=##name## id=<<id>>", env.Response.Raw)
	assert.Equal(t, "name=Alan id=7", env.Response.Refined)
	assert.Empty(t, env.Hostname)
}

func TestHandler_DebugEnvelopeNoMatch(t *testing.T) {
	h := newTestHandler(t, mapping.Set{{Request: mapping.RequestSpec{URL: "/other"}}},
		WithDebugInfo(map[string]int{"port": 7777}))

	rec := serve(h, "GET", "/nothing?debug", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Nil(t, env["matchedMapping"])
	assert.NotContains(t, env, "config")

	rec = serve(h, "GET", "/?debug", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, map[string]any{"port": float64(7777)}, env["config"])
	assert.Contains(t, env, "memory")
	assert.Contains(t, env, "uptime")
}

func TestHandler_ReadyWaitsForDatasets(t *testing.T) {
	dir := datasetDir(t)
	res, err := resolver.New(mapping.Set{{Request: mapping.RequestSpec{URL: "/u"}, Response: mapping.ResponseSpec{Body: "##users:42:name##"}}})
	require.NoError(t, err)

	release := make(chan struct{})
	loader := dbset.LoadAsync(context.Background(), dir, dbset.WithTableHook(func(*dbset.Table) { <-release }))
	h := NewHandler(res, loader)

	rec := serve(h, "GET", ReadyPath, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	stub := make(chan *httptest.ResponseRecorder, 1)
	go func() { stub <- serve(h, "GET", "/u", "") }()

	select {
	case <-stub:
		t.Fatal("stub request served before datasets were loaded")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-loader.Ready()

	got := <-stub
	assert.Equal(t, "Ada", got.Body.String())

	rec = serve(h, "GET", ReadyPath, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"users"`)
}

func TestHandler_HealthAndMetrics(t *testing.T) {
	m := metrics.NewServer()
	h := newTestHandler(t, mapping.Set{{ID: "ping", Request: mapping.RequestSpec{URL: "/ping"}}}, WithMetrics(m))

	rec := serve(h, "GET", HealthPath, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	serve(h, "GET", "/ping", "")
	serve(h, "GET", "/nope", "")

	rec = serve(h, "GET", MetricsPath, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `stubdb_requests_total{mapping="ping",method="GET",status="200"} 1`)
	assert.Contains(t, body, `stubdb_requests_total{mapping="none",method="GET",status="404"} 1`)
	assert.Contains(t, body, `stubdb_dataset_rows{dataset="users"} 2`)
	assert.Contains(t, body, "stubdb_mappings_total 1")

	h2 := newTestHandler(t, nil)
	assert.Equal(t, http.StatusNotFound, serve(h2, "GET", MetricsPath, "").Code)
}
