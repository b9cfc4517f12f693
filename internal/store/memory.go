package store

import (
	"context"
	"sync"
	"time"

	"articledash/internal/model"
)

type memEntry struct {
	snap    model.Snapshot
	expires time.Time
}

// MemoryStore keeps snapshots in process. Used when no Redis is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, id string, snap *model.Snapshot) error {
	cp := *snap
	if snap.Selected != nil {
		a := *snap.Selected
		cp.Selected = &a
	}
	cp.Draft.Errors = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memEntry{snap: cp, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.ttl > 0 && s.now().After(e.expires) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	snap := e.snap
	if e.snap.Selected != nil {
		a := *e.snap.Selected
		snap.Selected = &a
	}
	return &snap, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
