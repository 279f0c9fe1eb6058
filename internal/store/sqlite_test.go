package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/eduagents/tutord/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return repo
}

func TestLearnerRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	got, err := repo.GetLearner(ctx, "anon_missing")
	if err != nil {
		t.Fatalf("GetLearner failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for unknown learner, got %+v", got)
	}

	now := time.Now().Truncate(time.Second)
	learner := &domain.Learner{
		Identity:   "anon_0123456789abcdef0123456789abcdef",
		Username:   "learner-89abcdef",
		LastSeenAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.UpsertLearner(ctx, learner); err != nil {
		t.Fatalf("UpsertLearner failed: %v", err)
	}

	got, err = repo.GetLearner(ctx, learner.Identity)
	if err != nil {
		t.Fatalf("GetLearner failed: %v", err)
	}
	if got == nil || got.Username != "learner-89abcdef" {
		t.Fatalf("Expected stored learner, got %+v", got)
	}
	if !got.LastSeenAt.Equal(now) {
		t.Errorf("Expected last_seen_at %v, got %v", now, got.LastSeenAt)
	}

	later := now.Add(time.Hour)
	if err := repo.UpdateLastSeen(ctx, learner.Identity, later); err != nil {
		t.Fatalf("UpdateLastSeen failed: %v", err)
	}
	got, _ = repo.GetLearner(ctx, learner.Identity)
	if !got.LastSeenAt.Equal(later) {
		t.Errorf("Expected last_seen_at %v, got %v", later, got.LastSeenAt)
	}
}

func TestHistoryAppendAndGet(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	entries := []domain.HistoryEntry{
		{Topic: "Arithmetic", Question: "What is 5 + 3?", SubmittedAnswer: "8", ExpectedAnswer: "8", Correct: true, Timestamp: base},
		{Topic: "Algebra", Question: "Solve for x: 2x + 6 = 14", SubmittedAnswer: "5", ExpectedAnswer: "4", Correct: false, Timestamp: base.Add(time.Minute)},
		{Topic: "Fractions", Question: "What is 1/2 + 1/4?", SubmittedAnswer: "3/4", ExpectedAnswer: "3/4", Correct: true, Timestamp: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := repo.AppendHistory(ctx, "anon_a", e); err != nil {
			t.Fatalf("AppendHistory failed: %v", err)
		}
	}
	if err := repo.AppendHistory(ctx, "anon_b", domain.HistoryEntry{
		Topic: "Capitals", Question: "Capital of France?", SubmittedAnswer: "Paris",
		ExpectedAnswer: "Paris", Correct: true, Timestamp: base,
	}); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}

	got, err := repo.GetHistory(ctx, "anon_a", 50)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(got))
	}
	// Oldest first.
	if got[0].Topic != "Arithmetic" || got[2].Topic != "Fractions" {
		t.Errorf("Expected oldest-first ordering, got [%s %s %s]", got[0].Topic, got[1].Topic, got[2].Topic)
	}
	if got[1].Correct {
		t.Error("Expected the Algebra entry to be incorrect")
	}

	// A limit keeps the most recent entries, still oldest first.
	got, err = repo.GetHistory(ctx, "anon_a", 2)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(got) != 2 || got[0].Topic != "Algebra" || got[1].Topic != "Fractions" {
		t.Errorf("Expected the 2 most recent entries, got %+v", got)
	}

	// Learner isolation.
	other, err := repo.GetHistory(ctx, "anon_b", 50)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(other) != 1 || other[0].Topic != "Capitals" {
		t.Errorf("Expected only anon_b's entry, got %+v", other)
	}
}

func TestPruneHistory(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	old := domain.HistoryEntry{
		Topic: "Arithmetic", Question: "q", SubmittedAnswer: "a",
		ExpectedAnswer: "a", Correct: true,
		Timestamp: time.Now().Add(-48 * time.Hour),
	}
	fresh := old
	fresh.Topic = "Algebra"
	fresh.Timestamp = time.Now()

	if err := repo.AppendHistory(ctx, "anon_a", old); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	if err := repo.AppendHistory(ctx, "anon_a", fresh); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}

	deleted, err := repo.PruneHistory(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneHistory failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted entry, got %d", deleted)
	}

	got, err := repo.GetHistory(ctx, "anon_a", 50)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(got) != 1 || got[0].Topic != "Algebra" {
		t.Errorf("Expected only the fresh entry to remain, got %+v", got)
	}
}
