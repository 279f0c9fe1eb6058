package assessment

import (
	"fmt"
	"strings"
)

// keyword groups for the local heuristic, checked in priority order.
var (
	readingKeywords = []string{
		"letters", "sound blends", "phonetically", "spelling",
		"reading aloud", "sight words", "dyslexia", "decode",
	}
	numeracyKeywords = []string{
		"numbers", "calculate", "equations", "algebra",
		"addition", "subtraction", "math",
	}
	scienceKeywords = []string{"facts", "science", "concepts", "theory", "lab"}
)

// fallbackRecommendation derives a recommendation from keyword matching when
// the external analyzer is unavailable. The failure reason is folded into
// the rationale so the learner-facing note explains the degraded path.
func fallbackRecommendation(challenges, failureReason string) Analysis {
	lower := strings.ToLower(challenges)

	var rec Analysis
	switch {
	case containsAny(lower, readingKeywords):
		// Reading difficulties: steer toward low-reading-complexity content.
		rec = Analysis{
			Subject: "History",
			Level:   "Beginner",
			Rationale: "Reported challenges point to difficulties with phonetic decoding and word recognition. " +
				"Recommending Beginner History to build literacy confidence with simplified, structured content.",
		}
	case containsAny(lower, numeracyKeywords):
		rec = Analysis{
			Subject: "Math",
			Level:   "Beginner",
			Rationale: "Challenges center on numerical concepts and calculation. " +
				"Recommending Beginner Math to reinforce foundational arithmetic and number sense.",
		}
	case containsAny(lower, scienceKeywords):
		rec = Analysis{
			Subject: "Science",
			Level:   "Intermediate",
			Rationale: "Difficulty retaining and applying scientific facts and concepts. " +
				"Recommending Intermediate Science with a focus on visual and interactive learning.",
		}
	default:
		rec = Analysis{
			Subject: "History",
			Level:   "Beginner",
			Rationale: "Challenges are general. Recommending Beginner History as a balanced starting point " +
				"to work on study habits and recall.",
		}
	}

	rec.Rationale = fmt.Sprintf("Local analysis (%s). %s", failureReason, rec.Rationale)
	return rec
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
