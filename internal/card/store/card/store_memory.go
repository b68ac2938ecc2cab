// Package card provides storage for business cards.
package card

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tapcard/internal/card/models"
	"tapcard/pkg/platform/sentinel"
)

// InMemoryStore keeps cards in process memory. Used in tests and local
// development.
type InMemoryStore struct {
	mu    sync.RWMutex
	cards map[string]models.Card
}

// NewMemory creates an empty in-memory card store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{cards: make(map[string]models.Card)}
}

// List returns all cards ordered by ID.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Card, 0, len(s.cards))
	for _, c := range s.cards {
		copied := c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns the card with the given ID.
func (s *InMemoryStore) Get(_ context.Context, cardID string) (*models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cards[cardID]
	if !ok {
		return nil, fmt.Errorf("card %s: %w", cardID, sentinel.ErrNotFound)
	}
	copied := c
	return &copied, nil
}

// Save upserts a card.
func (s *InMemoryStore) Save(_ context.Context, card *models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cards[card.ID] = *card
	return nil
}
