package tutor

import (
	"testing"

	"github.com/eduagents/tutord/internal/domain"
)

func TestValidateRecommendation(t *testing.T) {
	catalog := domain.NewCatalog(
		domain.CurriculumKey{Subject: "Math", Level: "Beginner"},
		domain.CurriculumKey{Subject: "History", Level: "Beginner"},
	)
	fallback := domain.CurriculumKey{Subject: "History", Level: "Beginner"}

	tests := []struct {
		name        string
		subject     string
		level       string
		wantSubject string
		wantLevel   string
		substituted bool
	}{
		{"in catalog", "Math", "Beginner", "Math", "Beginner", false},
		{"unknown subject", "Chemistry", "Beginner", "History", "Beginner", true},
		{"unknown level", "Math", "Expert", "History", "Beginner", true},
		{"case mismatch is out of catalog", "math", "beginner", "History", "Beginner", true},
		{"empty pair", "", "", "History", "Beginner", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ValidateRecommendation(tt.subject, tt.level, catalog, fallback)
			if rec.Subject != tt.wantSubject || rec.Level != tt.wantLevel {
				t.Errorf("Expected %s:%s, got %s:%s", tt.wantSubject, tt.wantLevel, rec.Subject, rec.Level)
			}
			if rec.WasSubstituted != tt.substituted {
				t.Errorf("Expected WasSubstituted=%v, got %v", tt.substituted, rec.WasSubstituted)
			}
		})
	}
}
