// Health, readiness and metrics endpoints.

package engine

import (
	"net/http"
	"time"

	"github.com/getmockd/stubdb/pkg/httputil"
)

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady reports 503 until every dataset file has been loaded.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.datasets.Done() {
		httputil.WriteServiceUnavailable(w, "not_ready", "datasets are loading")
		return
	}
	store, err := h.datasets.Store(r.Context())
	if err != nil {
		httputil.WriteServiceUnavailable(w, "dataset_error", err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"mappings": h.resolver.Len(),
		"datasets": store.Names(),
	})
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		http.NotFound(w, r)
		return
	}
	h.metrics.Registry.Handler().ServeHTTP(w, r)
}
