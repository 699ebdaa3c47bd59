package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// snapshotTimeout bounds how long /snapshot waits for the loop.
const snapshotTimeout = 5 * time.Second

// Router returns the HTTP surface of the hub:
//
//	GET /ws        WebSocket stream
//	GET /healthz   liveness and viewer count
//	GET /snapshot  current tree as HTML
//	GET /metrics   metrics, when a handler is given
func (h *Hub) Router(metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", h.ServeWS)
	r.Get("/healthz", h.handleHealth)
	r.Get("/snapshot", h.handleSnapshot)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	return r
}

type health struct {
	Status  string `json:"status"`
	Viewers int    `json:"viewers"`
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := health{Status: "ok", Viewers: h.Viewers()}
	select {
	case <-h.loop.Done():
		status.Status = "stopped"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(status)
		return
	default:
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (h *Hub) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), snapshotTimeout)
	defer cancel()

	var html string
	if err := h.loop.Do(ctx, func() { html = h.doc.HTML() }); err != nil {
		h.logger.Warn("snapshot failed", "error", err)
		http.Error(w, "loop unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}
