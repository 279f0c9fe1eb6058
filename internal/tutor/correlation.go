package tutor

import (
	"errors"
	"time"
)

// RequestKind names the collaborator a request was issued to.
type RequestKind int

const (
	// KnowledgeLookup is a curriculum content request.
	KnowledgeLookup RequestKind = iota
	// AssessmentAnalysis is a challenge-text recommendation request.
	AssessmentAnalysis
)

// String returns a stable name for logging.
func (k RequestKind) String() string {
	switch k {
	case KnowledgeLookup:
		return "knowledge_lookup"
	case AssessmentAnalysis:
		return "assessment_analysis"
	default:
		return "unknown"
	}
}

// ErrConflict is returned by Register when a request of the same kind is
// already outstanding for the identity. The caller must decline or defer the
// new request instead of overwriting the correlation record.
var ErrConflict = errors.New("request already in flight")

// CorrelationEntry records one outstanding collaborator request.
type CorrelationEntry struct {
	Kind     RequestKind
	Identity string
	IssuedAt time.Time
}

type correlationKey struct {
	identity string
	kind     RequestKind
}

// CorrelationTable maps outstanding collaborator requests to the session
// that issued them. Collaborator replies carry no correlation id, so
// correctness depends on at most one in-flight request per (identity, kind);
// Register enforces that invariant.
//
// Like SessionStore, the table has no internal locking: the engine's event
// loop is its sole owner.
type CorrelationTable struct {
	entries map[correlationKey]CorrelationEntry
}

// NewCorrelationTable creates an empty table.
func NewCorrelationTable() *CorrelationTable {
	return &CorrelationTable{entries: make(map[correlationKey]CorrelationEntry)}
}

// Register records a new outstanding request. It fails with ErrConflict when
// an entry for (identity, kind) already exists.
func (t *CorrelationTable) Register(kind RequestKind, identity string, now time.Time) (CorrelationEntry, error) {
	key := correlationKey{identity: identity, kind: kind}
	if _, ok := t.entries[key]; ok {
		return CorrelationEntry{}, ErrConflict
	}
	entry := CorrelationEntry{Kind: kind, Identity: identity, IssuedAt: now}
	t.entries[key] = entry
	return entry, nil
}

// Resolve removes and returns the entry for (identity, kind) so a reply is
// matched exactly once. A second call for the same pair returns ok=false;
// idempotent consumption is what makes duplicate replies harmless.
func (t *CorrelationTable) Resolve(kind RequestKind, identity string) (CorrelationEntry, bool) {
	key := correlationKey{identity: identity, kind: kind}
	entry, ok := t.entries[key]
	if !ok {
		return CorrelationEntry{}, false
	}
	delete(t.entries, key)
	return entry, true
}

// SweepExpired removes and returns entries issued before now-timeout. The
// engine turns each one into a synthetic timeout event for its session.
func (t *CorrelationTable) SweepExpired(now time.Time, timeout time.Duration) []CorrelationEntry {
	var expired []CorrelationEntry
	cutoff := now.Add(-timeout)
	for key, entry := range t.entries {
		if entry.IssuedAt.Before(cutoff) {
			expired = append(expired, entry)
			delete(t.entries, key)
		}
	}
	return expired
}

// Len returns the number of outstanding requests.
func (t *CorrelationTable) Len() int {
	return len(t.entries)
}
