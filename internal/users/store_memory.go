package users

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"qms/pkg/platform/sentinel"
)

// MemoryStore is the in-memory twin of PostgresStore.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[int64]User
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int64]User), nextID: 1}
}

func (s *MemoryStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("create user: %w", sentinel.ErrConflict)
		}
	}
	user.ID = s.nextID
	s.nextID++
	user.Active = true
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) Update(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("update user: %w", sentinel.ErrNotFound)
	}
	for id, other := range s.users {
		if id != user.ID && strings.EqualFold(other.Email, user.Email) {
			return fmt.Errorf("update user: %w", sentinel.ErrConflict)
		}
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.Role = user.Role
	s.users[user.ID] = existing
	return nil
}

func (s *MemoryStore) Deactivate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("deactivate user: %w", sentinel.ErrNotFound)
	}
	user.Active = false
	s.users[id] = user
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("find user %d: %w", id, sentinel.ErrNotFound)
	}
	return &user, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("find user by email: %w", sentinel.ErrNotFound)
}
