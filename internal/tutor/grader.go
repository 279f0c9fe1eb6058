package tutor

import (
	"strings"
)

// Verdict is the result of grading one submitted answer.
type Verdict struct {
	Correct bool
}

// Grade compares a submitted answer against the expected one. Comparison is
// case-insensitive with leading/trailing whitespace trimmed; there is no
// partial credit and no numeric tolerance. Side-effect-free — the engine
// appends the history record and clears the pending question.
func Grade(submitted, expected string) Verdict {
	return Verdict{
		Correct: strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(expected)),
	}
}
