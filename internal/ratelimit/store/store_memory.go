// Package store provides fixed-window counters for rate limiting.
package store

import (
	"context"
	"sync"
	"time"

	"tapcard/internal/ratelimit/models"
)

type window struct {
	count   int
	startAt time.Time
}

// InMemoryStore implements fixed-window counting in process memory. Counters
// are per instance, so limits multiply by the replica count; use the Redis
// store when limits must hold across a fleet.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

// NewMemory creates an empty in-memory counter store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{windows: make(map[string]*window)}
}

// Allow counts one request against the key's current window and reports
// whether it fits under the limit.
func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, windowSize time.Duration) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	w := s.windows[key]
	if w == nil || now.Sub(w.startAt) >= windowSize {
		w = &window{startAt: now}
		s.windows[key] = w
	}
	w.count++

	result := &models.Result{
		Limit:   limit,
		ResetAt: w.startAt.Add(windowSize),
	}
	if w.count <= limit {
		result.Allowed = true
		result.Remaining = limit - w.count
	}
	return result, nil
}
