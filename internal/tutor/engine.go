package tutor

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/eduagents/tutord/internal/domain"
	"github.com/eduagents/tutord/internal/messaging"
)

const (
	defaultCollaboratorTimeout = 15 * time.Second
	defaultSweepInterval       = 3 * time.Second
	defaultInboxSize           = 256
	historyWriteTimeout        = 5 * time.Second
)

// HistorySink receives graded answers for durable storage. Writes happen off
// the event loop and are best-effort.
type HistorySink interface {
	AppendHistory(ctx context.Context, identity string, entry domain.HistoryEntry) error
}

// Config wires an Engine.
type Config struct {
	Bus      *messaging.Bus
	Catalog  *domain.Catalog
	Fallback domain.CurriculumKey // substituted for out-of-catalog recommendations

	CollaboratorTimeout time.Duration
	SweepInterval       time.Duration
	InboxSize           int

	History HistorySink // optional
}

// Engine is the tutoring orchestrator. It owns the SessionStore and the
// CorrelationTable exclusively and mutates them only from its single event
// loop: student messages, collaborator replies, and timeout sweeps are all
// applied one at a time from one ordered inbox, so per-session invariants
// hold without locks. Issuing a collaborator request never blocks the loop;
// progress resumes when the matching reply is dequeued.
type Engine struct {
	bus      *messaging.Bus
	inbox    <-chan messaging.Envelope
	sessions *SessionStore
	table    *CorrelationTable
	catalog  *domain.Catalog
	fallback domain.CurriculumKey
	history  HistorySink

	timeout       time.Duration
	sweepInterval time.Duration

	now func() time.Time
}

// NewEngine creates an engine and registers its inbox on the bus.
func NewEngine(cfg Config) *Engine {
	if cfg.CollaboratorTimeout <= 0 {
		cfg.CollaboratorTimeout = defaultCollaboratorTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = defaultInboxSize
	}
	return &Engine{
		bus:           cfg.Bus,
		inbox:         cfg.Bus.Register(messaging.TutorAddress, cfg.InboxSize),
		sessions:      NewSessionStore(),
		table:         NewCorrelationTable(),
		catalog:       cfg.Catalog,
		fallback:      cfg.Fallback,
		history:       cfg.History,
		timeout:       cfg.CollaboratorTimeout,
		sweepInterval: cfg.SweepInterval,
		now:           time.Now,
	}
}

// Run processes events until ctx is cancelled. It is the only goroutine that
// touches engine state.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.sweepInterval)
	defer ticker.Stop()

	slog.Info("Tutor engine started",
		"collaborator_timeout", e.timeout,
		"sweep_interval", e.sweepInterval,
		"catalog_pairs", e.catalog.Len())

	for {
		select {
		case <-ctx.Done():
			slog.Info("Tutor engine shutting down", "reason", ctx.Err())
			return
		case env := <-e.inbox:
			e.dispatch(env)
		case <-ticker.C:
			e.sweep(e.now())
		}
	}
}

// dispatch applies one inbound envelope by payload type.
func (e *Engine) dispatch(env messaging.Envelope) {
	switch p := env.Payload.(type) {
	case messaging.SessionStart:
		e.handleSessionStart(p)
	case messaging.StudentText:
		e.handleStudentText(p)
	case messaging.KnowledgeLookupReply:
		e.handleKnowledgeReply(p)
	case messaging.AssessmentAnalysisReply:
		e.handleAssessmentReply(p)
	default:
		slog.Warn("Tutor engine received unexpected payload",
			"kind", env.Payload.Kind().String(), "from", string(env.From))
	}
}

func (e *Engine) handleSessionStart(p messaging.SessionStart) {
	sess := e.sessions.Get(p.Identity)
	if sess == nil {
		sess = e.sessions.GetOrCreate(p.Identity)
		slog.Info("Session started", "identity", p.Identity)
		e.send(p.Identity, messaging.OutboundNotice, WelcomeText)
	}
	e.sendMenuFor(sess)
}

func (e *Engine) handleStudentText(p messaging.StudentText) {
	sess := e.sessions.GetOrCreate(p.Identity)
	text := strings.TrimSpace(p.Text)

	if text == "" {
		e.sendMenuFor(sess)
		return
	}

	if sess.State == domain.Closed {
		e.send(p.Identity, messaging.OutboundNotice, "This session has ended. Start a new session to continue.")
		return
	}

	// Reserved directives work in any live state.
	if strings.EqualFold(text, "q") || strings.EqualFold(text, "quit") {
		e.closeSession(sess)
		return
	}
	if strings.EqualFold(text, "request history") || strings.EqualFold(text, "history") {
		// Side query: replies with history and score, never changes state.
		e.send(p.Identity, messaging.OutboundHistory, renderHistory(sess))
		return
	}

	switch sess.State {
	case domain.AwaitingSubjectSelection:
		e.handleSubjectSelection(sess, text)
	case domain.AwaitingLevelSelection:
		e.handleLevelSelection(sess, text)
	case domain.AwaitingChallengeText:
		e.issueAssessment(sess, text)
	case domain.AwaitingCollaboratorReply:
		// Impatient repeat input: no transition.
		e.send(sess.Identity, messaging.OutboundNotice, "Still processing your previous request, please wait...")
	case domain.AwaitingAnswer:
		e.gradeAnswer(sess, text)
	case domain.AwaitingNextAction:
		e.handleNextAction(sess, text)
	}

	e.sessions.Put(sess)
}

func (e *Engine) handleSubjectSelection(sess *domain.Session, text string) {
	subjects := e.catalog.Subjects()

	switch {
	case text == "0":
		e.send(sess.Identity, messaging.OutboundHistory, renderHistory(sess))

	case strings.EqualFold(text, "a"):
		sess.State = domain.AwaitingChallengeText
		e.send(sess.Identity, messaging.OutboundMenu, renderChallengePrompt())

	case strings.Contains(text, ":"):
		key, err := domain.ParseCurriculumKey(text)
		if err != nil {
			e.send(sess.Identity, messaging.OutboundError, renderInvalidSelection(subjects))
			return
		}
		if !e.catalog.Contains(key) {
			e.send(sess.Identity, messaging.OutboundError, renderInvalidSelection(subjects))
			return
		}
		e.issueKnowledgeLookup(sess, key)

	default:
		idx, err := strconv.Atoi(text)
		if err != nil || idx < 1 || idx > len(subjects) {
			e.send(sess.Identity, messaging.OutboundError, renderInvalidSelection(subjects))
			e.send(sess.Identity, messaging.OutboundMenu, renderSubjectMenu(subjects))
			return
		}
		sess.TempSubject = subjects[idx-1]
		sess.State = domain.AwaitingLevelSelection
		e.send(sess.Identity, messaging.OutboundMenu,
			renderLevelMenu(sess.TempSubject, e.catalog.LevelsFor(sess.TempSubject)))
	}
}

func (e *Engine) handleLevelSelection(sess *domain.Session, text string) {
	levels := e.catalog.LevelsFor(sess.TempSubject)

	idx, err := strconv.Atoi(text)
	if err != nil || idx < 1 || idx > len(levels) || sess.TempSubject == "" {
		sess.State = domain.AwaitingSubjectSelection
		sess.TempSubject = ""
		e.send(sess.Identity, messaging.OutboundError, "Invalid choice or missing subject. Please retry.")
		e.send(sess.Identity, messaging.OutboundMenu, renderSubjectMenu(e.catalog.Subjects()))
		return
	}

	key := domain.CurriculumKey{Subject: sess.TempSubject, Level: levels[idx-1]}
	sess.TempSubject = ""
	// A timeout must restore the subject menu, not a level menu whose
	// subject is gone.
	sess.State = domain.AwaitingSubjectSelection
	e.issueKnowledgeLookup(sess, key)
}

func (e *Engine) handleNextAction(sess *domain.Session, text string) {
	switch text {
	case "1":
		sess.State = domain.AwaitingSubjectSelection
		e.send(sess.Identity, messaging.OutboundMenu, renderSubjectMenu(e.catalog.Subjects()))
	case "0":
		e.send(sess.Identity, messaging.OutboundHistory, renderHistory(sess))
	default:
		e.send(sess.Identity, messaging.OutboundError, "Invalid choice. Please enter 1, 0, or 'q'.")
		e.send(sess.Identity, messaging.OutboundMenu, renderNextActionMenu())
	}
}

// issueKnowledgeLookup registers the in-flight request and emits it. The
// register/send discipline makes every outbound request provably
// unique-in-flight per (identity, kind).
func (e *Engine) issueKnowledgeLookup(sess *domain.Session, key domain.CurriculumKey) {
	if _, err := e.table.Register(KnowledgeLookup, sess.Identity, e.now()); err != nil {
		if errors.Is(err, ErrConflict) {
			slog.Warn("Duplicate knowledge lookup declined", "identity", sess.Identity)
			e.send(sess.Identity, messaging.OutboundNotice, "A lesson request is already in progress, please wait...")
			sess.State = domain.AwaitingCollaboratorReply
			return
		}
		e.send(sess.Identity, messaging.OutboundError, "Could not issue the lesson request, please try again.")
		return
	}

	resume := sess.State
	sess.SetCurriculum(key.Subject, key.Level)
	sess.ResumeState = resume
	sess.State = domain.AwaitingCollaboratorReply

	err := e.bus.Send(messaging.TutorAddress, messaging.KnowledgeAddress, messaging.KnowledgeLookup{
		Identity: sess.Identity,
		Subject:  key.Subject,
		Level:    key.Level,
	})
	if err != nil {
		slog.Error("Failed to emit knowledge lookup", "error", err, "identity", sess.Identity)
		e.table.Resolve(KnowledgeLookup, sess.Identity)
		sess.State = resume
		sess.ClearCurriculum()
		e.send(sess.Identity, messaging.OutboundError, "The knowledge service is unavailable, please try again shortly.")
		return
	}

	slog.Info("Knowledge lookup issued", "identity", sess.Identity, "pair", key.String())
	e.send(sess.Identity, messaging.OutboundNotice,
		"Requesting a "+key.Subject+" lesson at "+key.Level+" level...")
}

func (e *Engine) issueAssessment(sess *domain.Session, challengeText string) {
	if _, err := e.table.Register(AssessmentAnalysis, sess.Identity, e.now()); err != nil {
		if errors.Is(err, ErrConflict) {
			slog.Warn("Duplicate assessment request declined", "identity", sess.Identity)
			e.send(sess.Identity, messaging.OutboundNotice, "An assessment is already in progress, please wait...")
			sess.State = domain.AwaitingCollaboratorReply
			return
		}
		e.send(sess.Identity, messaging.OutboundError, "Could not issue the assessment request, please try again.")
		return
	}

	resume := sess.State
	sess.ResumeState = resume
	sess.State = domain.AwaitingCollaboratorReply

	err := e.bus.Send(messaging.TutorAddress, messaging.AssessmentAddress, messaging.AssessmentAnalysis{
		Identity:      sess.Identity,
		ChallengeText: challengeText,
	})
	if err != nil {
		slog.Error("Failed to emit assessment request", "error", err, "identity", sess.Identity)
		e.table.Resolve(AssessmentAnalysis, sess.Identity)
		sess.State = resume
		e.send(sess.Identity, messaging.OutboundError, "The assessment service is unavailable, please try again shortly.")
		return
	}

	slog.Info("Assessment analysis issued", "identity", sess.Identity)
	e.send(sess.Identity, messaging.OutboundNotice, "Sending your challenges for AI analysis...")
}

func (e *Engine) gradeAnswer(sess *domain.Session, text string) {
	q := sess.PendingQuestion
	if q == nil {
		// Defensive: state machine should make this unreachable.
		slog.Error("Answer received with no pending question", "identity", sess.Identity)
		sess.State = domain.AwaitingSubjectSelection
		e.send(sess.Identity, messaging.OutboundMenu, renderSubjectMenu(e.catalog.Subjects()))
		return
	}

	verdict := Grade(text, q.Answer)
	entry := domain.HistoryEntry{
		Topic:           q.Topic,
		Question:        q.Text,
		SubmittedAnswer: strings.TrimSpace(text),
		ExpectedAnswer:  q.Answer,
		Correct:         verdict.Correct,
		Timestamp:       e.now(),
	}
	sess.RecordAnswer(entry)
	sess.PendingQuestion = nil
	sess.State = domain.AwaitingNextAction

	slog.Info("Answer graded",
		"identity", sess.Identity, "topic", q.Topic, "correct", verdict.Correct, "score", sess.Score)

	e.send(sess.Identity, messaging.OutboundFeedback,
		renderFeedback(verdict.Correct, entry, q.Explanation, sess.Score))
	e.send(sess.Identity, messaging.OutboundMenu, renderNextActionMenu())

	e.persistHistory(sess.Identity, entry)
}

func (e *Engine) persistHistory(identity string, entry domain.HistoryEntry) {
	if e.history == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
		defer cancel()
		if err := e.history.AppendHistory(ctx, identity, entry); err != nil {
			slog.Warn("Failed to persist history entry", "error", err, "identity", identity)
		}
	}()
}

func (e *Engine) handleKnowledgeReply(p messaging.KnowledgeLookupReply) {
	if _, ok := e.table.Resolve(KnowledgeLookup, p.Identity); !ok {
		slog.Warn("Discarding orphan knowledge reply", "identity", p.Identity, "pair", p.Subject+":"+p.Level)
		return
	}

	sess := e.sessions.Get(p.Identity)
	if sess == nil || sess.State == domain.Closed {
		slog.Warn("Discarding knowledge reply for closed session", "identity", p.Identity)
		return
	}

	if !p.Found {
		sess.ClearCurriculum()
		sess.State = domain.AwaitingSubjectSelection
		e.sessions.Put(sess)
		e.send(p.Identity, messaging.OutboundNotice,
			"No content available for "+p.Subject+":"+p.Level+". Please choose another subject.")
		e.send(p.Identity, messaging.OutboundMenu, renderSubjectMenu(e.catalog.Subjects()))
		return
	}

	sess.PendingQuestion = &domain.Question{
		Topic:       p.Topic,
		Text:        p.Question,
		Answer:      p.Answer,
		Explanation: p.Explanation,
	}
	sess.State = domain.AwaitingAnswer
	e.sessions.Put(sess)

	slog.Info("Question delivered", "identity", p.Identity, "topic", p.Topic)
	e.send(p.Identity, messaging.OutboundQuestion, renderQuestion(sess.PendingQuestion))
}

func (e *Engine) handleAssessmentReply(p messaging.AssessmentAnalysisReply) {
	if _, ok := e.table.Resolve(AssessmentAnalysis, p.Identity); !ok {
		slog.Warn("Discarding orphan assessment reply", "identity", p.Identity)
		return
	}

	sess := e.sessions.Get(p.Identity)
	if sess == nil || sess.State == domain.Closed {
		slog.Warn("Discarding assessment reply for closed session", "identity", p.Identity)
		return
	}

	rec := ValidateRecommendation(p.Subject, p.Level, e.catalog, e.fallback)
	if rec.WasSubstituted {
		slog.Info("Recommendation substituted",
			"identity", p.Identity,
			"proposed", p.Subject+":"+p.Level,
			"substituted", rec.Subject+":"+rec.Level)
	}

	sess.State = domain.AwaitingNextAction
	e.sessions.Put(sess)

	e.send(p.Identity, messaging.OutboundRecommendation,
		renderRecommendation(rec, p.Subject, p.Level, p.Rationale))
	e.send(p.Identity, messaging.OutboundMenu, renderNextActionMenu())
}

// sweep expires stale correlation entries and turns each into a synthetic
// timeout for its session so no learner is stuck awaiting a reply forever.
func (e *Engine) sweep(now time.Time) {
	for _, entry := range e.table.SweepExpired(now, e.timeout) {
		slog.Warn("Collaborator request timed out",
			"identity", entry.Identity, "kind", entry.Kind.String(),
			"issued_at", entry.IssuedAt)
		e.handleTimeout(entry)
	}
}

func (e *Engine) handleTimeout(entry CorrelationEntry) {
	sess := e.sessions.Get(entry.Identity)
	if sess == nil || sess.State != domain.AwaitingCollaboratorReply {
		return
	}

	sess.State = sess.ResumeState
	if entry.Kind == KnowledgeLookup {
		sess.ClearCurriculum()
	}
	e.sessions.Put(sess)

	e.send(entry.Identity, messaging.OutboundError,
		"The "+collaboratorName(entry.Kind)+" did not respond in time. Please try again.")
	e.sendMenuFor(sess)
}

func collaboratorName(kind RequestKind) string {
	if kind == AssessmentAnalysis {
		return "assessment service"
	}
	return "knowledge service"
}

func (e *Engine) closeSession(sess *domain.Session) {
	// Drop any outstanding correlation entries so late replies are treated
	// as orphans and never applied.
	e.table.Resolve(KnowledgeLookup, sess.Identity)
	e.table.Resolve(AssessmentAnalysis, sess.Identity)

	sess.State = domain.Closed
	sess.PendingQuestion = nil
	e.sessions.Put(sess)

	slog.Info("Session closed", "identity", sess.Identity, "score", sess.Score)
	e.send(sess.Identity, messaging.OutboundNotice, "Session terminated. Goodbye!")
}

func (e *Engine) sendMenuFor(sess *domain.Session) {
	switch sess.State {
	case domain.AwaitingSubjectSelection:
		e.send(sess.Identity, messaging.OutboundMenu, renderSubjectMenu(e.catalog.Subjects()))
	case domain.AwaitingLevelSelection:
		e.send(sess.Identity, messaging.OutboundMenu,
			renderLevelMenu(sess.TempSubject, e.catalog.LevelsFor(sess.TempSubject)))
	case domain.AwaitingChallengeText:
		e.send(sess.Identity, messaging.OutboundMenu, renderChallengePrompt())
	case domain.AwaitingCollaboratorReply:
		e.send(sess.Identity, messaging.OutboundNotice, "Waiting for the tutor's response...")
	case domain.AwaitingAnswer:
		e.send(sess.Identity, messaging.OutboundQuestion, renderQuestion(sess.PendingQuestion))
	case domain.AwaitingNextAction:
		e.send(sess.Identity, messaging.OutboundMenu, renderNextActionMenu())
	}
}

func (e *Engine) send(identity string, category messaging.OutboundCategory, text string) {
	err := e.bus.Send(messaging.TutorAddress, messaging.StudentsAddress, messaging.StudentOutbound{
		Identity: identity,
		Category: category,
		Text:     text,
	})
	if err != nil {
		slog.Error("Failed to emit student message", "error", err, "identity", identity)
	}
}
