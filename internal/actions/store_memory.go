package actions

import (
	"context"
	"sort"
	"sync"
	"time"

	"qms/pkg/platform/sentinel"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]Action
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, items: make(map[int64]Action)}
}

func (s *MemoryStore) Create(_ context.Context, a *Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID
	s.nextID++
	s.items[a.ID] = *a
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Action, 0, len(s.items))
	for _, a := range s.items {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (*Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id int64, from, to Status, closedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if a.Status != from {
		return sentinel.ErrInvalidState
	}
	a.Status = to
	a.ClosedAt = closedAt
	s.items[id] = a
	return nil
}

func (s *MemoryStore) DueWithin(_ context.Context, now time.Time, window time.Duration) ([]Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	limit := now.Add(window)
	var out []Action
	for _, a := range s.items {
		if a.Status == StatusClosed {
			continue
		}
		if a.DueDate.Before(now) || a.DueDate.After(limit) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}
