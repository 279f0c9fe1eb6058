package push

import (
	"fmt"
	"testing"

	"github.com/eduagents/tutord/internal/messaging"
)

func TestFeedKeepsRecentPerLearner(t *testing.T) {
	feed := NewFeed(3)

	for i := 1; i <= 5; i++ {
		feed.Append("anon_a", Message{Category: messaging.OutboundNotice, Text: fmt.Sprintf("a%d", i)})
	}
	feed.Append("anon_b", Message{Category: messaging.OutboundMenu, Text: "b1"})

	got := feed.Recent("anon_a", 0)
	if len(got) != 3 {
		t.Fatalf("Expected 3 messages after overflow, got %d", len(got))
	}
	// Oldest first, oldest two overwritten.
	if got[0].Text != "a3" || got[2].Text != "a5" {
		t.Errorf("Expected [a3 a4 a5], got [%s %s %s]", got[0].Text, got[1].Text, got[2].Text)
	}

	other := feed.Recent("anon_b", 0)
	if len(other) != 1 || other[0].Text != "b1" {
		t.Errorf("Expected b1 only for anon_b, got %+v", other)
	}
}

func TestFeedRecentLimit(t *testing.T) {
	feed := NewFeed(10)
	for i := 1; i <= 4; i++ {
		feed.Append("anon_a", Message{Text: fmt.Sprintf("m%d", i)})
	}

	got := feed.Recent("anon_a", 2)
	if len(got) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(got))
	}
	if got[0].Text != "m3" || got[1].Text != "m4" {
		t.Errorf("Expected the 2 most recent oldest-first, got [%s %s]", got[0].Text, got[1].Text)
	}
}

func TestFeedUnknownLearner(t *testing.T) {
	feed := NewFeed(5)
	if got := feed.Recent("anon_missing", 0); got != nil {
		t.Errorf("Expected nil for unknown learner, got %+v", got)
	}
}
