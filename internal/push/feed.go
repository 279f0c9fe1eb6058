// Package push delivers tutor output to learners: a bounded recent-outputs
// feed for polling clients and a WebSocket channel for live delivery.
package push

import (
	"sync"
	"time"

	"github.com/eduagents/tutord/internal/messaging"
)

// Message is one rendered tutor output.
type Message struct {
	Category messaging.OutboundCategory `json:"category"`
	Text     string                     `json:"text"`
	SentAt   time.Time                  `json:"sent_at"`
}

// Feed keeps a fixed-size ring of recent messages per learner so a polling
// UI can render the dialogue. When a ring is full the oldest message is
// overwritten.
type Feed struct {
	mu    sync.RWMutex
	size  int
	rings map[string]*ring
}

type ring struct {
	buf  []Message
	head int
	full bool
}

// NewFeed creates a feed keeping up to size messages per learner.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 50
	}
	return &Feed{size: size, rings: make(map[string]*ring)}
}

// Append records a message for the learner.
func (f *Feed) Append(identity string, msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.rings[identity]
	if !ok {
		r = &ring{buf: make([]Message, f.size)}
		f.rings[identity] = r
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % f.size
	if r.head == 0 {
		r.full = true
	}
}

// Recent returns up to n most recent messages for the learner, oldest first.
func (f *Feed) Recent(identity string, n int) []Message {
	f.mu.RLock()
	defer f.mu.RUnlock()

	r, ok := f.rings[identity]
	if !ok {
		return nil
	}

	count := r.head
	start := 0
	if r.full {
		count = f.size
		start = r.head
	}
	if n > 0 && n < count {
		start = (start + count - n) % f.size
		count = n
	}

	out := make([]Message, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, r.buf[(start+i)%f.size])
	}
	return out
}
