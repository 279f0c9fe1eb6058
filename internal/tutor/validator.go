package tutor

import (
	"github.com/eduagents/tutord/internal/domain"
)

// Recommendation is a validated subject/level suggestion.
type Recommendation struct {
	Subject        string
	Level          string
	WasSubstituted bool
}

// ValidateRecommendation checks a proposed subject/level pair against the
// catalog. Pairs outside the catalog are replaced with the configured
// fallback pair and flagged so the engine can append an explanatory note.
// Membership is exact-string and case-sensitive.
func ValidateRecommendation(subject, level string, catalog *domain.Catalog, fallback domain.CurriculumKey) Recommendation {
	proposed := domain.CurriculumKey{Subject: subject, Level: level}
	if catalog.Contains(proposed) {
		return Recommendation{Subject: subject, Level: level}
	}
	return Recommendation{
		Subject:        fallback.Subject,
		Level:          fallback.Level,
		WasSubstituted: true,
	}
}
