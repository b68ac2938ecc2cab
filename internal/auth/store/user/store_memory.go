// Package user implements the Role Store: the persistent mapping from a
// provider-assigned subject id to role and account metadata.
//
// Error Contract:
// All store methods follow this pattern:
// - Return sentinel.ErrNotFound (wrapped) when the subject does not exist
// - Return sentinel.ErrUnavailable (wrapped) for infrastructure failures
// - Return nil for successful operations
package user

import (
	"context"
	"fmt"
	"sync"

	"tapcard/internal/auth/models"
	"tapcard/pkg/platform/sentinel"
)

// InMemoryStore keeps user records in memory for tests/dev.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMemory constructs an empty in-memory user store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]*models.User)}
}

func (s *InMemoryStore) Get(_ context.Context, subjectID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[subjectID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, fmt.Errorf("user %q: %w", subjectID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Save(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[subjectID]; !ok {
		return fmt.Errorf("user %q: %w", subjectID, sentinel.ErrNotFound)
	}
	delete(s.users, subjectID)
	return nil
}
