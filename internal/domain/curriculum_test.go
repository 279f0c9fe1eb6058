package domain

import (
	"reflect"
	"testing"
)

func TestParseCurriculumKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    CurriculumKey
		wantErr bool
	}{
		{"valid pair", "Math:Beginner", CurriculumKey{Subject: "Math", Level: "Beginner"}, false},
		{"inner whitespace trimmed", " Math : Beginner ", CurriculumKey{Subject: "Math", Level: "Beginner"}, false},
		{"multi-word subject", "Computer Science:Beginner", CurriculumKey{Subject: "Computer Science", Level: "Beginner"}, false},
		{"no colon", "Math", CurriculumKey{}, true},
		{"two colons", "Math:Beginner:Extra", CurriculumKey{}, true},
		{"empty subject", ":Beginner", CurriculumKey{}, true},
		{"empty level", "Math:", CurriculumKey{}, true},
		{"only whitespace halves", " : ", CurriculumKey{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCurriculumKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCurriculumKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCurriculumKey(%q) = %+v, expected %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCatalogMembershipIsCaseSensitive(t *testing.T) {
	catalog := NewCatalog(CurriculumKey{Subject: "Math", Level: "Beginner"})

	if !catalog.Contains(CurriculumKey{Subject: "Math", Level: "Beginner"}) {
		t.Error("Expected exact pair to be in the catalog")
	}
	if catalog.Contains(CurriculumKey{Subject: "math", Level: "beginner"}) {
		t.Error("Expected case-mismatched pair to be out of the catalog")
	}
	if catalog.Contains(CurriculumKey{Subject: "Math", Level: "Advanced"}) {
		t.Error("Expected unknown level to be out of the catalog")
	}
}

func TestCatalogMenus(t *testing.T) {
	catalog := NewCatalog(
		CurriculumKey{Subject: "Math", Level: "Beginner"},
		CurriculumKey{Subject: "Math", Level: "Advanced"},
		CurriculumKey{Subject: "History", Level: "Beginner"},
	)

	subjects := catalog.Subjects()
	if !reflect.DeepEqual(subjects, []string{"History", "Math"}) {
		t.Errorf("Expected sorted distinct subjects [History Math], got %v", subjects)
	}

	levels := catalog.LevelsFor("Math")
	if !reflect.DeepEqual(levels, []string{"Advanced", "Beginner"}) {
		t.Errorf("Expected sorted levels [Advanced Beginner], got %v", levels)
	}

	if got := catalog.LevelsFor("Chemistry"); len(got) != 0 {
		t.Errorf("Expected no levels for unknown subject, got %v", got)
	}
	if catalog.Len() != 3 {
		t.Errorf("Expected 3 pairs, got %d", catalog.Len())
	}
}

func TestRecordAnswer(t *testing.T) {
	sess := &Session{Identity: "anon_a"}

	sess.RecordAnswer(HistoryEntry{Topic: "Arithmetic", Correct: true})
	sess.RecordAnswer(HistoryEntry{Topic: "Algebra", Correct: false})
	sess.RecordAnswer(HistoryEntry{Topic: "Fractions", Correct: true})

	if sess.Score != 2 {
		t.Errorf("Expected score 2, got %d", sess.Score)
	}
	if len(sess.History) != 3 {
		t.Fatalf("Expected 3 history entries, got %d", len(sess.History))
	}
	if sess.History[0].Topic != "Arithmetic" || sess.History[2].Topic != "Fractions" {
		t.Error("Expected insertion order to be preserved")
	}

	recent := sess.RecentHistory(2)
	if len(recent) != 2 || recent[0].Topic != "Algebra" {
		t.Errorf("Expected last 2 entries starting at Algebra, got %+v", recent)
	}
	if got := sess.RecentHistory(10); len(got) != 3 {
		t.Errorf("Expected all entries when n exceeds length, got %d", len(got))
	}
}
