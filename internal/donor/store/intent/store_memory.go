package intent

import (
	"context"
	"sync"

	"sndot/internal/donor/models"
	id "sndot/pkg/domain"
	"sndot/pkg/platform/sentinel"
)

// InMemoryIntentStore keeps at most one intent per donor.
type InMemoryIntentStore struct {
	mu      sync.RWMutex
	intents map[id.DonorID]*models.DonationIntent
}

func New() *InMemoryIntentStore {
	return &InMemoryIntentStore{intents: make(map[id.DonorID]*models.DonationIntent)}
}

func (s *InMemoryIntentStore) FindByDonor(_ context.Context, donorID id.DonorID) (*models.DonationIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	intent, ok := s.intents[donorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(intent), nil
}

// Save upserts by donor. The first stored creation time and intent id win.
func (s *InMemoryIntentStore) Save(_ context.Context, intent *models.DonationIntent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := clone(intent)
	if existing, ok := s.intents[intent.DonorID]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	s.intents[intent.DonorID] = stored
	intent.ID = stored.ID
	intent.CreatedAt = stored.CreatedAt
	return nil
}

// DeleteByDonor mirrors the ON DELETE CASCADE of the SQL schema.
func (s *InMemoryIntentStore) DeleteByDonor(_ context.Context, donorID id.DonorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.intents, donorID)
	return nil
}

func clone(intent *models.DonationIntent) *models.DonationIntent {
	out := *intent
	out.Organs = append([]string{}, intent.Organs...)
	return &out
}
