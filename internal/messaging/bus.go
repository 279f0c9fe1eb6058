// Package messaging provides the in-process asynchronous message bus between
// the tutor engine, its collaborator services, and the student relay.
//
// Delivery is fire-and-forget: Send never blocks the sender, and a full inbox
// is an error the sender handles. There is no shared memory between
// endpoints and no synchronous call/return.
package messaging

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Address names a bus endpoint.
type Address string

// Well-known endpoints.
const (
	TutorAddress      Address = "tutor"
	KnowledgeAddress  Address = "knowledge"
	AssessmentAddress Address = "assessment"
	StudentsAddress   Address = "students"
)

var (
	// ErrUnknownAddress is returned when no endpoint is registered for the
	// destination.
	ErrUnknownAddress = errors.New("unknown address")
	// ErrInboxFull is returned when the destination inbox is at capacity.
	ErrInboxFull = errors.New("inbox full")
)

// Envelope wraps a payload with routing metadata.
type Envelope struct {
	ID      uuid.UUID
	From    Address
	To      Address
	SentAt  time.Time
	Payload Payload
}

// Bus routes envelopes between registered endpoints.
type Bus struct {
	mu      sync.RWMutex
	inboxes map[Address]chan Envelope
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{inboxes: make(map[Address]chan Envelope)}
}

// Register creates an inbox for addr with the given capacity and returns its
// receive side. Registering an address twice replaces the previous inbox;
// callers register once during wiring.
func (b *Bus) Register(addr Address, capacity int) <-chan Envelope {
	if capacity <= 0 {
		capacity = 64
	}
	ch := make(chan Envelope, capacity)
	b.mu.Lock()
	b.inboxes[addr] = ch
	b.mu.Unlock()
	return ch
}

// Send delivers a payload to the destination inbox without blocking.
func (b *Bus) Send(from, to Address, p Payload) error {
	b.mu.RLock()
	inbox, ok := b.inboxes[to]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("send %s -> %s: %w", from, to, ErrUnknownAddress)
	}

	env := Envelope{
		ID:      uuid.New(),
		From:    from,
		To:      to,
		SentAt:  time.Now(),
		Payload: p,
	}

	select {
	case inbox <- env:
		return nil
	default:
		return fmt.Errorf("send %s -> %s: %w", from, to, ErrInboxFull)
	}
}
