package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/eduagents/tutord/internal/store"
)

// HealthHandler reports service liveness and database reachability.
type HealthHandler struct {
	repo    store.Repository
	timeout time.Duration
}

func NewHealthHandler(repo store.Repository, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{repo: repo, timeout: timeout}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"reason": "database unreachable",
		})
		return
	}

	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
