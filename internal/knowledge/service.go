// Package knowledge implements the Knowledge Service: an asynchronous
// collaborator that serves curriculum content for a subject/level pair.
package knowledge

import (
	"context"
	"log/slog"

	"github.com/eduagents/tutord/internal/domain"
	"github.com/eduagents/tutord/internal/messaging"
)

const defaultInboxSize = 128

// Service consumes KnowledgeLookup requests from the bus and replies with
// curriculum content. It keeps per-learner progress so repeated lookups of
// the same pair rotate through the question bank.
type Service struct {
	bus   *messaging.Bus
	inbox <-chan messaging.Envelope

	// progress[identity][pair] = next question index. Owned solely by the
	// service goroutine.
	progress map[string]map[domain.CurriculumKey]int
}

// NewService creates the service and registers its inbox on the bus.
func NewService(bus *messaging.Bus) *Service {
	return &Service{
		bus:      bus,
		inbox:    bus.Register(messaging.KnowledgeAddress, defaultInboxSize),
		progress: make(map[string]map[domain.CurriculumKey]int),
	}
}

// Run consumes lookup requests until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	slog.Info("Knowledge service started", "pairs", len(curriculum))
	for {
		select {
		case <-ctx.Done():
			slog.Info("Knowledge service shutting down", "reason", ctx.Err())
			return
		case env := <-s.inbox:
			req, ok := env.Payload.(messaging.KnowledgeLookup)
			if !ok {
				slog.Warn("Knowledge service received unexpected payload",
					"kind", env.Payload.Kind().String(), "from", string(env.From))
				continue
			}
			s.handleLookup(env.From, req)
		}
	}
}

func (s *Service) handleLookup(replyTo messaging.Address, req messaging.KnowledgeLookup) {
	key := domain.CurriculumKey{Subject: req.Subject, Level: req.Level}
	reply := messaging.KnowledgeLookupReply{
		Identity: req.Identity,
		Subject:  req.Subject,
		Level:    req.Level,
	}

	if q, ok := s.nextQuestion(req.Identity, key); ok {
		reply.Topic = q.Topic
		reply.Question = q.Text
		reply.Answer = q.Answer
		reply.Explanation = q.Explanation
		reply.Found = true
		slog.Info("Serving question", "identity", req.Identity, "pair", key.String(), "topic", q.Topic)
	} else {
		slog.Warn("No content for pair", "identity", req.Identity, "pair", key.String())
	}

	if err := s.bus.Send(messaging.KnowledgeAddress, replyTo, reply); err != nil {
		slog.Error("Failed to send knowledge reply", "error", err, "identity", req.Identity)
	}
}

// nextQuestion returns the learner's next question for the pair, advancing
// their per-pair cursor so repeat requests serve fresh content.
func (s *Service) nextQuestion(identity string, key domain.CurriculumKey) (domain.Question, bool) {
	bank, ok := curriculum[key]
	if !ok || len(bank) == 0 {
		return domain.Question{}, false
	}

	cursors, ok := s.progress[identity]
	if !ok {
		cursors = make(map[domain.CurriculumKey]int)
		s.progress[identity] = cursors
	}

	idx := cursors[key] % len(bank)
	cursors[key] = idx + 1
	return bank[idx], true
}
