// Package visit provides storage for recorded card visits.
package visit

import (
	"context"
	"sync"

	"tapcard/internal/analytics/models"
)

// InMemoryStore keeps visits in process memory. Used in tests and local
// development.
type InMemoryStore struct {
	mu     sync.RWMutex
	visits map[string][]models.Visit
}

// NewMemory creates an empty in-memory visit store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{visits: make(map[string][]models.Visit)}
}

// Insert records a visit.
func (s *InMemoryStore) Insert(_ context.Context, visit *models.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.visits[visit.CardID] = append(s.visits[visit.CardID], *visit)
	return nil
}

// Summary aggregates the visits recorded for the given card. A card with no
// visits yields a zero summary.
func (s *InMemoryStore) Summary(_ context.Context, cardID string) (*models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summary models.Summary
	for _, v := range s.visits[cardID] {
		summary.TotalVisits++
		switch v.Device {
		case models.DeviceMobile:
			summary.MobileVisits++
		case models.DeviceTablet:
			summary.TabletVisits++
		case models.DeviceDesktop:
			summary.DesktopVisits++
		}
	}
	return &summary, nil
}
