package push

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/coder/websocket"
	"github.com/eduagents/tutord/internal/messaging"
	"github.com/eduagents/tutord/internal/transcript"
)

const defaultInboxSize = 256

// Relay consumes StudentOutbound messages from the bus and delivers each one
// to its learner: appended to the recent-outputs feed, logged to the
// transcript, and pushed over the live WebSocket when one is connected.
type Relay struct {
	bus   *messaging.Bus
	inbox <-chan messaging.Envelope
	feed  *Feed
	conns *ConnManager
	log   *transcript.Logger // optional
}

// NewRelay creates the relay and registers the students inbox on the bus.
func NewRelay(bus *messaging.Bus, feed *Feed, conns *ConnManager, log *transcript.Logger) *Relay {
	return &Relay{
		bus:   bus,
		inbox: bus.Register(messaging.StudentsAddress, defaultInboxSize),
		feed:  feed,
		conns: conns,
		log:   log,
	}
}

// Run delivers outbound messages until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	slog.Info("Student relay started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("Student relay shutting down", "reason", ctx.Err())
			return
		case env := <-r.inbox:
			out, ok := env.Payload.(messaging.StudentOutbound)
			if !ok {
				slog.Warn("Student relay received unexpected payload",
					"kind", env.Payload.Kind().String(), "from", string(env.From))
				continue
			}
			r.deliver(ctx, env, out)
		}
	}
}

func (r *Relay) deliver(ctx context.Context, env messaging.Envelope, out messaging.StudentOutbound) {
	msg := Message{Category: out.Category, Text: out.Text, SentAt: env.SentAt}
	r.feed.Append(out.Identity, msg)

	if r.log != nil {
		r.log.Log(transcript.Event{
			Timestamp: env.SentAt,
			Identity:  out.Identity,
			Direction: "outbound",
			Category:  string(out.Category),
			Text:      out.Text,
		})
	}

	conn := r.conns.GetActive(out.Identity)
	if conn == nil {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.Warn("Failed to marshal push message", "error", err, "identity", out.Identity)
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("Push write failed, dropping connection", "error", err, "identity", out.Identity)
		r.conns.Unregister(out.Identity, conn)
	}
}
