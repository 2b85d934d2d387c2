package history

import (
	"context"
	"sync"

	"github.com/petrijr/tasktree/pkg/api"
)

// Store is an append-only history store for run events.
type Store interface {
	AppendEvent(ctx context.Context, ev api.RunEvent) error
	ListEvents(ctx context.Context, runID string) ([]api.RunEvent, error)
}

// NoopStore discards all events.
type NoopStore struct{}

func (NoopStore) AppendEvent(ctx context.Context, ev api.RunEvent) error { return nil }
func (NoopStore) ListEvents(ctx context.Context, runID string) ([]api.RunEvent, error) {
	return nil, nil
}

// MemoryStore keeps events in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string][]api.RunEvent
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string][]api.RunEvent)}
}

func (s *MemoryStore) AppendEvent(ctx context.Context, ev api.RunEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.RunID] = append(s.events[ev.RunID], ev)
	return nil
}

func (s *MemoryStore) ListEvents(ctx context.Context, runID string) ([]api.RunEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	evs := s.events[runID]
	out := make([]api.RunEvent, len(evs))
	copy(out, evs)
	return out, nil
}
