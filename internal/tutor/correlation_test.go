package tutor

import (
	"errors"
	"testing"
	"time"
)

func TestRegisterEnforcesOneInFlightPerKind(t *testing.T) {
	table := NewCorrelationTable()
	now := time.Now()

	if _, err := table.Register(KnowledgeLookup, "anon_a", now); err != nil {
		t.Fatalf("Expected first register to succeed, got %v", err)
	}
	if _, err := table.Register(KnowledgeLookup, "anon_a", now); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict on duplicate register, got %v", err)
	}

	// A different kind for the same identity is independent.
	if _, err := table.Register(AssessmentAnalysis, "anon_a", now); err != nil {
		t.Errorf("Expected register of different kind to succeed, got %v", err)
	}
	// Same kind for a different identity is independent.
	if _, err := table.Register(KnowledgeLookup, "anon_b", now); err != nil {
		t.Errorf("Expected register for different identity to succeed, got %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("Expected 3 outstanding entries, got %d", table.Len())
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	table := NewCorrelationTable()
	now := time.Now()

	if _, err := table.Register(KnowledgeLookup, "anon_a", now); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	entry, ok := table.Resolve(KnowledgeLookup, "anon_a")
	if !ok {
		t.Fatal("Expected first resolve to find the entry")
	}
	if entry.Identity != "anon_a" || entry.Kind != KnowledgeLookup {
		t.Errorf("Expected entry for anon_a/knowledge_lookup, got %+v", entry)
	}

	if _, ok := table.Resolve(KnowledgeLookup, "anon_a"); ok {
		t.Error("Expected second resolve to return ok=false")
	}

	// After resolve, a new register succeeds again.
	if _, err := table.Register(KnowledgeLookup, "anon_a", now); err != nil {
		t.Errorf("Expected re-register after resolve to succeed, got %v", err)
	}
}

func TestSweepExpired(t *testing.T) {
	table := NewCorrelationTable()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if _, err := table.Register(KnowledgeLookup, "anon_old", base); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := table.Register(KnowledgeLookup, "anon_new", base.Add(10*time.Second)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	expired := table.SweepExpired(base.Add(16*time.Second), 15*time.Second)
	if len(expired) != 1 {
		t.Fatalf("Expected 1 expired entry, got %d", len(expired))
	}
	if expired[0].Identity != "anon_old" {
		t.Errorf("Expected anon_old to expire, got %s", expired[0].Identity)
	}
	if table.Len() != 1 {
		t.Errorf("Expected 1 entry remaining, got %d", table.Len())
	}

	// Swept entries are gone; a late reply resolves nothing.
	if _, ok := table.Resolve(KnowledgeLookup, "anon_old"); ok {
		t.Error("Expected swept entry to be unresolvable")
	}
}
