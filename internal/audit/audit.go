// Package audit captures key registry actions for traceability. Events are
// transport-agnostic so stores and sinks can fan out.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action names for registry events.
const (
	ActionUniversityRegistered = "university_registered"
)

// Event is emitted from domain logic to capture a registry mutation.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time
	Action    string
	// ActorAccount is the attested identity that performed the action.
	ActorAccount string
	// SubjectAccount is the account the action was about.
	SubjectAccount string
	RequestID      string
}

// Publisher receives events emitted by services.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// MemoryPublisher keeps events in memory. It backs tests and standalone runs;
// a durable sink can replace it without touching emitting code.
type MemoryPublisher struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryPublisher constructs an empty in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Emit appends the event, assigning an ID if the caller did not.
func (p *MemoryPublisher) Emit(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return append([]Event{}, p.events...)
}
