package tasks

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	task      *Task
	expiresAt time.Time
}

// MemoryStore keeps tasks in a mutex-guarded map. State is lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryStore returns a store whose entries expire ttl after their last
// write. ttl <= 0 keeps entries forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, items: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Create(ctx context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.items[t.ID]; ok && !s.expired(e) {
		return ErrExists
	}
	s.items[t.ID] = s.entry(t)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Task, error) {
	s.mu.RLock()
	e, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if s.expired(e) {
		s.mu.Lock()
		if cur, ok := s.items[id]; ok && s.expired(cur) {
			delete(s.items, id)
		}
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	return e.task.clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[t.ID]
	if !ok || s.expired(e) {
		return ErrNotFound
	}
	s.items[t.ID] = s.entry(t)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) entry(t *Task) memoryEntry {
	e := memoryEntry{task: t.clone()}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return e
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
