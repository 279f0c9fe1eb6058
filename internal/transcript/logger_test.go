package transcript

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoggerWritesNDJSONPerLearner(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(Config{Enabled: true, Dir: dir, QueueSize: 16}, nil)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Log(Event{Identity: "anon_a", Direction: "inbound", Text: "Math:Beginner"})
	logger.Log(Event{Identity: "anon_a", Direction: "outbound", Category: "question", Text: "What is 5 + 3?"})
	logger.Log(Event{Identity: "anon_b", Direction: "inbound", Text: "q"})

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events := readEvents(t, filepath.Join(dir, "anon_a.ndjson"))
	if len(events) != 2 {
		t.Fatalf("Expected 2 events for anon_a, got %d", len(events))
	}
	if events[0].Direction != "inbound" || events[0].Text != "Math:Beginner" {
		t.Errorf("Expected first event to be the inbound selection, got %+v", events[0])
	}
	if events[1].Category != "question" {
		t.Errorf("Expected outbound question category, got %q", events[1].Category)
	}
	if events[0].Timestamp.IsZero() {
		t.Error("Expected a timestamp to be filled in")
	}

	other := readEvents(t, filepath.Join(dir, "anon_b.ndjson"))
	if len(other) != 1 || other[0].Text != "q" {
		t.Errorf("Expected anon_b's file to hold only its own event, got %+v", other)
	}
}

func TestGlobalStreamCollectsAllLearners(t *testing.T) {
	dir := t.TempDir()
	globalPath := filepath.Join(dir, "all.ndjson")
	logger, err := NewLogger(Config{
		Enabled: true, Dir: dir, QueueSize: 16,
		GlobalEnabled: true, GlobalPath: globalPath,
	}, nil)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Log(Event{Identity: "anon_a", Direction: "inbound", Text: "1"})
	logger.Log(Event{Identity: "anon_b", Direction: "inbound", Text: "2"})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	all := readEvents(t, globalPath)
	if len(all) != 2 {
		t.Fatalf("Expected 2 events in the global stream, got %d", len(all))
	}
	if all[0].Identity != "anon_a" || all[1].Identity != "anon_b" {
		t.Errorf("Expected both learners in order, got %+v", all)
	}

	// Per-learner files still exist alongside the global stream.
	if got := readEvents(t, filepath.Join(dir, "anon_a.ndjson")); len(got) != 1 {
		t.Errorf("Expected anon_a's own file with 1 event, got %d", len(got))
	}
}

func TestDisabledLoggerIsNoOp(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(Config{Enabled: false, Dir: dir}, nil)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Log(Event{Identity: "anon_a", Direction: "inbound", Text: "hello"})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no files when disabled, got %d", len(entries))
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(Config{Enabled: true, Dir: dir, QueueSize: 100}, nil)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	for i := 0; i < 50; i++ {
		logger.Log(Event{Identity: "anon_a", Direction: "outbound", Text: "message", Timestamp: time.Now()})
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events := readEvents(t, filepath.Join(dir, "anon_a.ndjson"))
	if len(events) != 50 {
		t.Errorf("Expected all 50 queued events to be written, got %d", len(events))
	}
}

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("Invalid NDJSON line %q: %v", scanner.Text(), err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return events
}
