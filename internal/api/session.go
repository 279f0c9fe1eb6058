package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/eduagents/tutord/internal/identity"
	"github.com/eduagents/tutord/internal/messaging"
	"github.com/eduagents/tutord/internal/push"
	"github.com/eduagents/tutord/internal/store"
	"github.com/eduagents/tutord/internal/transcript"
)

// SessionHandler exposes the learner-facing session endpoints. Input is
// forwarded onto the bus; the engine's replies land in the push feed and
// are fetched by polling or over the WebSocket.
type SessionHandler struct {
	bus        *messaging.Bus
	feed       *push.Feed
	repo       store.Repository
	transcript *transcript.Logger
}

func NewSessionHandler(bus *messaging.Bus, feed *push.Feed, repo store.Repository, tl *transcript.Logger) *SessionHandler {
	return &SessionHandler{bus: bus, feed: feed, repo: repo, transcript: tl}
}

type inputRequest struct {
	Text string `json:"text"`
}

type inputAck struct {
	AckID   string `json:"ack_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Start begins (or resumes) a session for the caller, prompting the engine
// to send the welcome text and subject menu.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())
	if id == "" {
		Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	if err := h.bus.Send(messaging.StudentsAddress, messaging.TutorAddress, messaging.SessionStart{Identity: id}); err != nil {
		slog.Error("Failed to deliver session start", "identity", id, "error", err)
		Error(w, http.StatusServiceUnavailable, "tutor is busy, try again shortly")
		return
	}

	h.touchLastSeen(id)

	JSON(w, http.StatusAccepted, inputAck{
		AckID:  uuid.NewString(),
		Status: "accepted",
	})
}

// Input forwards one line of learner text to the tutor engine.
func (h *SessionHandler) Input(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())
	if id == "" {
		Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Text) > 4096 {
		Error(w, http.StatusBadRequest, "input too long")
		return
	}

	if h.transcript != nil {
		h.transcript.Log(transcript.Event{
			Timestamp: time.Now().UTC(),
			Identity:  id,
			Direction: "inbound",
			Text:      req.Text,
		})
	}

	if err := h.bus.Send(messaging.StudentsAddress, messaging.TutorAddress, messaging.StudentText{Identity: id, Text: req.Text}); err != nil {
		if errors.Is(err, messaging.ErrInboxFull) {
			Error(w, http.StatusServiceUnavailable, "tutor is busy, try again shortly")
			return
		}
		slog.Error("Failed to deliver student text", "identity", id, "error", err)
		Error(w, http.StatusInternalServerError, "failed to deliver input")
		return
	}

	h.touchLastSeen(id)

	JSON(w, http.StatusAccepted, inputAck{
		AckID:   uuid.NewString(),
		Status:  "accepted",
		Message: "Input received",
	})
}

// Outputs returns the recent tutor messages for the caller, oldest first.
func (h *SessionHandler) Outputs(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())
	if id == "" {
		Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	msgs := h.feed.Recent(id, limit)
	if msgs == nil {
		msgs = []push.Message{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"outputs": msgs})
}

// History returns the caller's persisted answer history, oldest first.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())
	if id == "" {
		Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.repo.GetHistory(ctx, id, limit)
	if err != nil {
		slog.Error("Failed to load history", "identity", id, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}

// touchLastSeen updates the learner's last-seen timestamp without blocking
// the request on the database.
func (h *SessionHandler) touchLastSeen(id string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.repo.UpdateLastSeen(ctx, id, time.Now().UTC()); err != nil {
			slog.Warn("Failed to update last seen", "identity", id, "error", err)
		}
	}()
}
