package engine

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/getmockd/stubdb/pkg/mapping"
)

// Response is what a mapping says to send, before templating.
type Response struct {
	Status   int
	Headers  mapping.Headers
	Template string
	Latency  time.Duration

	// BodyMissing is set when the response file could not be read.
	// Status is then 404 whatever the mapping configures.
	BodyMissing bool
}

// Assemble derives the response of m. Relative response files are read from
// baseDir.
func Assemble(m *mapping.Mapping, baseDir string) Response {
	spec := m.Response
	resp := Response{
		Status:   spec.StatusCode(),
		Headers:  spec.Headers,
		Template: spec.Body,
		Latency:  time.Duration(spec.Latency) * time.Millisecond,
	}

	if spec.Body == "" && spec.File != "" {
		path := spec.File
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			resp.Status = http.StatusNotFound
			resp.Template = ""
			resp.BodyMissing = true
			return resp
		}
		resp.Template = string(data)
	}
	return resp
}

// wait blocks the calling request for d. It reports false if ctx ends first.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
