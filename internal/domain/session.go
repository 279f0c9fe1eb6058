// Package domain contains core domain types for the tutoring platform.
package domain

import (
	"time"
)

// SessionState is the position of a learner in the tutoring dialogue.
type SessionState int

const (
	// AwaitingSubjectSelection is the main menu: the learner picks a subject,
	// sends a direct "Subject:Level" pair, or enters the assessment flow.
	AwaitingSubjectSelection SessionState = iota
	// AwaitingLevelSelection follows a numbered subject choice.
	AwaitingLevelSelection
	// AwaitingChallengeText collects free-form text for the AI assessment.
	AwaitingChallengeText
	// AwaitingCollaboratorReply means a request is outstanding at the
	// Knowledge or Assessment service; learner input is deferred.
	AwaitingCollaboratorReply
	// AwaitingAnswer means a question has been delivered and the next learner
	// message is graded as its answer.
	AwaitingAnswer
	// AwaitingNextAction is the post-feedback menu.
	AwaitingNextAction
	// Closed is terminal; late collaborator replies are discarded.
	Closed
)

// String returns a stable name for logging.
func (s SessionState) String() string {
	switch s {
	case AwaitingSubjectSelection:
		return "awaiting_subject_selection"
	case AwaitingLevelSelection:
		return "awaiting_level_selection"
	case AwaitingChallengeText:
		return "awaiting_challenge_text"
	case AwaitingCollaboratorReply:
		return "awaiting_collaborator_reply"
	case AwaitingAnswer:
		return "awaiting_answer"
	case AwaitingNextAction:
		return "awaiting_next_action"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// HistoryEntry records one graded answer.
type HistoryEntry struct {
	Topic           string    `json:"topic"`
	Question        string    `json:"question"`
	SubmittedAnswer string    `json:"submitted_answer"`
	ExpectedAnswer  string    `json:"expected_answer"`
	Correct         bool      `json:"correct"`
	Timestamp       time.Time `json:"timestamp"`
}

// Session holds the dialogue state for one learner identity.
//
// Invariants maintained by the orchestration engine:
//   - PendingQuestion != nil exactly when State == AwaitingAnswer.
//   - Subject and Level are both set or both empty.
type Session struct {
	Identity        string
	State           SessionState
	Subject         string
	Level           string
	TempSubject     string // numbered subject choice, pending level selection
	PendingQuestion *Question
	Score           int
	History         []HistoryEntry
	// ResumeState is the state to restore when an outstanding collaborator
	// request times out. Meaningful only in AwaitingCollaboratorReply.
	ResumeState SessionState
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SetCurriculum records the selected subject/level pair.
func (s *Session) SetCurriculum(subject, level string) {
	s.Subject = subject
	s.Level = level
}

// ClearCurriculum unsets both curriculum coordinates together.
func (s *Session) ClearCurriculum() {
	s.Subject = ""
	s.Level = ""
}

// RecordAnswer appends a graded answer to the session history and bumps the
// score when correct. Insertion order is display order.
func (s *Session) RecordAnswer(entry HistoryEntry) {
	s.History = append(s.History, entry)
	if entry.Correct {
		s.Score++
	}
}

// RecentHistory returns the last n history entries.
func (s *Session) RecentHistory(n int) []HistoryEntry {
	if n >= len(s.History) {
		return s.History
	}
	return s.History[len(s.History)-n:]
}
