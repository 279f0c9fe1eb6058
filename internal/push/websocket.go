package push

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/eduagents/tutord/internal/identity"
)

// WebSocketHandler upgrades learner connections for live tutor output.
// Input still travels over the HTTP relay; the socket is delivery-only.
type WebSocketHandler struct {
	conns         *ConnManager
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(conns *ConnManager, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		conns:         conns,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	learnerID := identity.FromContext(r.Context())
	if learnerID == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	slog.Info("WebSocket connection request", "identity", learnerID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "identity", learnerID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "identity", learnerID)
		}
	}()

	h.conns.Register(learnerID, ws)
	defer h.conns.Unregister(learnerID, ws)

	// Read loop exists only to observe close; clients send nothing but pings.
	ctx := r.Context()
	for {
		if _, _, err := ws.Read(ctx); err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "identity", learnerID)
			} else {
				slog.Debug("WebSocket read ended", "error", err, "identity", learnerID)
			}
			return
		}
	}
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
