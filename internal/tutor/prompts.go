package tutor

import (
	"fmt"
	"strings"

	"github.com/eduagents/tutord/internal/domain"
)

const promptRule = "=================================================="

// WelcomeText is sent when a session starts.
const WelcomeText = "Welcome to the Agent Education Platform! Pick a subject to begin."

func renderSubjectMenu(subjects []string) string {
	var b strings.Builder
	b.WriteString("Please choose a subject or option:\n")
	for i, subject := range subjects {
		fmt.Fprintf(&b, "  [%d] %s\n", i+1, subject)
	}
	b.WriteString("  [A] AI Assessment (Diagnostic)\n")
	b.WriteString("  [0] Check My History\n")
	b.WriteString("  [q] Quit Session\n")
	b.WriteString(promptRule)
	return b.String()
}

func renderLevelMenu(subject string, levels []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please choose a difficulty level for %s:\n", subject)
	for i, level := range levels {
		fmt.Fprintf(&b, "  [%d] %s\n", i+1, level)
	}
	b.WriteString("  [q] Quit Session\n")
	b.WriteString(promptRule)
	return b.String()
}

func renderChallengePrompt() string {
	var b strings.Builder
	b.WriteString("--- AI Assessment ---\n")
	b.WriteString("Please describe your learning challenges in detail ")
	b.WriteString("(e.g., 'I struggle with word order and sequencing in math'):\n")
	b.WriteString(promptRule)
	return b.String()
}

func renderNextActionMenu() string {
	var b strings.Builder
	b.WriteString("What would you like to do next?\n")
	b.WriteString("  [1] Select New Subject/Level\n")
	b.WriteString("  [0] Check My History\n")
	b.WriteString("  [q] Quit Session\n")
	b.WriteString(promptRule)
	return b.String()
}

func renderQuestion(q *domain.Question) string {
	return fmt.Sprintf("Question: %s", q.Text)
}

func renderFeedback(correct bool, entry domain.HistoryEntry, explanation string, score int) string {
	var b strings.Builder
	if correct {
		b.WriteString("Correct! Well done.\n")
	} else {
		fmt.Fprintf(&b, "Not quite. The expected answer was: %s\n", entry.ExpectedAnswer)
	}
	if explanation != "" {
		fmt.Fprintf(&b, "Explanation: %s\n", explanation)
	}
	fmt.Fprintf(&b, "Session score: %d", score)
	return b.String()
}

func renderRecommendation(rec Recommendation, proposedSubject, proposedLevel, rationale string) string {
	var b strings.Builder
	b.WriteString("AI Recommendation Received!\n")
	fmt.Fprintf(&b, "AI Analysis: %s\n", rationale)
	fmt.Fprintf(&b, "Suggested Lesson: %s:%s\n", rec.Subject, rec.Level)
	if rec.WasSubstituted {
		fmt.Fprintf(&b, "Note: the suggested %s:%s is not in the current curriculum, so the default %s:%s was substituted.\n",
			proposedSubject, proposedLevel, rec.Subject, rec.Level)
	}
	fmt.Fprintf(&b, "To start this lesson, type the exact suggestion (e.g., '%s:%s') or select a different option from the menu.",
		rec.Subject, rec.Level)
	return b.String()
}

func renderHistory(sess *domain.Session) string {
	var b strings.Builder
	b.WriteString("           TUTORING SESSION HISTORY\n")
	b.WriteString(promptRule)
	b.WriteString("\n")
	if len(sess.History) == 0 {
		b.WriteString("No tutoring history recorded yet in this session.\n")
	}
	for i, entry := range sess.History {
		status := "Incorrect"
		if entry.Correct {
			status = "Correct"
		}
		fmt.Fprintf(&b, "--- Entry %d (%s) ---\n", i+1, status)
		fmt.Fprintf(&b, "   Topic: %s\n", entry.Topic)
		fmt.Fprintf(&b, "   Question: %s\n", truncate(entry.Question, 60))
		fmt.Fprintf(&b, "   Your Answer: %s\n", entry.SubmittedAnswer)
		fmt.Fprintf(&b, "   Correct Answer: %s\n", entry.ExpectedAnswer)
	}
	fmt.Fprintf(&b, "Score this session: %d", sess.Score)
	return b.String()
}

func renderInvalidSelection(subjects []string) string {
	return fmt.Sprintf("Invalid choice. Valid subjects: %s. Enter a menu number, a Subject:Level pair, 'A', '0', or 'q'.",
		strings.Join(subjects, ", "))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
