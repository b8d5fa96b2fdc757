package engine

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/getmockd/stubdb/pkg/httputil"
	"github.com/getmockd/stubdb/pkg/mapping"
	"github.com/getmockd/stubdb/pkg/resolver"
)

// envelope is the body served for requests carrying the debug parameter.
type envelope struct {
	Request        resolver.Snapshot `json:"request"`
	MatchedMapping *mapping.Mapping  `json:"matchedMapping"`
	Captures       resolver.Captures `json:"captures"`
	Response       *debugResponse    `json:"response,omitempty"`

	// Server details, only on "/" when nothing matched.
	Config   any         `json:"config,omitempty"`
	Hostname string      `json:"hostname,omitempty"`
	Memory   *memoryInfo `json:"memory,omitempty"`
	Uptime   string      `json:"uptime,omitempty"`
}

type debugResponse struct {
	Status  int             `json:"status"`
	Headers mapping.Headers `json:"headers"`
	Raw     string          `json:"raw"`
	Refined string          `json:"refined"`
}

// memoryInfo reports Go runtime memory in bytes.
type memoryInfo struct {
	Total uint64 `json:"total"`
	Free  uint64 `json:"free"`
}

func newEnvelope(req *resolver.Request, m *resolver.Match) *envelope {
	env := &envelope{
		Request:  req.Snapshot(),
		Captures: resolver.Captures{},
	}
	if m != nil {
		env.MatchedMapping = m.Mapping
		if m.Captures != nil {
			env.Captures = m.Captures
		}
	}
	return env
}

func (h *Handler) addServerInfo(env *envelope) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	env.Config = h.info
	env.Hostname, _ = os.Hostname()
	env.Memory = &memoryInfo{Total: mem.Sys, Free: mem.HeapIdle - mem.HeapReleased}
	env.Uptime = time.Since(h.start).Round(time.Second).String()
}

func writeEnvelope(w http.ResponseWriter, status int, env *envelope) {
	httputil.WriteJSON(w, status, env)
}
