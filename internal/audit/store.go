package audit

import (
	"context"
	"sync"
)

// Sink receives committed audit events. Implementations must tolerate
// duplicate delivery; the worker retries nothing but main may replay on boot.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// MemoryStore keeps events in memory. It backs tests and deployments without
// a broker.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByActor returns the actor's events oldest-first.
func (s *MemoryStore) ListByActor(_ context.Context, actorID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.ActorID == actorID {
			out = append(out, e)
		}
	}
	return out, nil
}
