// Package assessment implements the Assessment Service: an asynchronous
// collaborator that turns free-form learner challenge text into a
// subject/level recommendation, using an external ranking model with a local
// keyword heuristic as fallback.
package assessment

import (
	"context"
	"log/slog"
	"time"

	"github.com/eduagents/tutord/internal/messaging"
)

const (
	defaultInboxSize      = 64
	defaultAnalyzeTimeout = 25 * time.Second
)

// Analysis is a subject/level recommendation with its rationale.
type Analysis struct {
	Subject   string
	Level     string
	Rationale string
}

// Analyzer produces a recommendation from challenge text.
type Analyzer interface {
	Analyze(ctx context.Context, challengeText string) (Analysis, error)
}

// Service consumes AssessmentAnalysis requests from the bus and replies with
// recommendations. Each request runs in its own goroutine so a slow model
// call never blocks the inbox.
type Service struct {
	bus      *messaging.Bus
	inbox    <-chan messaging.Envelope
	analyzer Analyzer // nil when no external model is configured
	timeout  time.Duration
}

// NewService creates the service and registers its inbox on the bus.
// analyzer may be nil; the local heuristic then handles every request.
func NewService(bus *messaging.Bus, analyzer Analyzer) *Service {
	return &Service{
		bus:      bus,
		inbox:    bus.Register(messaging.AssessmentAddress, defaultInboxSize),
		analyzer: analyzer,
		timeout:  defaultAnalyzeTimeout,
	}
}

// Run consumes analysis requests until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	slog.Info("Assessment service started", "external_model", s.analyzer != nil)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Assessment service shutting down", "reason", ctx.Err())
			return
		case env := <-s.inbox:
			req, ok := env.Payload.(messaging.AssessmentAnalysis)
			if !ok {
				slog.Warn("Assessment service received unexpected payload",
					"kind", env.Payload.Kind().String(), "from", string(env.From))
				continue
			}
			go s.handleRequest(ctx, env.From, req)
		}
	}
}

func (s *Service) handleRequest(ctx context.Context, replyTo messaging.Address, req messaging.AssessmentAnalysis) {
	analysis := s.analyze(ctx, req.ChallengeText)

	slog.Info("Assessment complete",
		"identity", req.Identity,
		"recommendation", analysis.Subject+":"+analysis.Level)

	err := s.bus.Send(messaging.AssessmentAddress, replyTo, messaging.AssessmentAnalysisReply{
		Identity:  req.Identity,
		Subject:   analysis.Subject,
		Level:     analysis.Level,
		Rationale: analysis.Rationale,
	})
	if err != nil {
		slog.Error("Failed to send assessment reply", "error", err, "identity", req.Identity)
	}
}

func (s *Service) analyze(ctx context.Context, challengeText string) Analysis {
	if s.analyzer == nil {
		return fallbackRecommendation(challengeText, "no external model configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	analysis, err := s.analyzer.Analyze(ctx, challengeText)
	if err != nil {
		slog.Warn("External analyzer failed, using local fallback", "error", err)
		return fallbackRecommendation(challengeText, "external model unavailable")
	}
	return analysis
}
