package donor

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sndot/internal/donor/models"
	id "sndot/pkg/domain"
	"sndot/pkg/platform/sentinel"
)

// InMemoryDonorStore keeps donors in maps keyed by surrogate and natural key.
// The national id index mirrors the unique constraint of the SQL schema.
type InMemoryDonorStore struct {
	mu         sync.RWMutex
	donors     map[id.DonorID]*models.Donor
	byNational map[id.NationalID]id.DonorID
}

func New() *InMemoryDonorStore {
	return &InMemoryDonorStore{
		donors:     make(map[id.DonorID]*models.Donor),
		byNational: make(map[id.NationalID]id.DonorID),
	}
}

func (s *InMemoryDonorStore) Create(_ context.Context, donor *models.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donors[donor.ID]; ok {
		return fmt.Errorf("donor %s: %w", donor.ID, sentinel.ErrConflict)
	}
	if _, ok := s.byNational[donor.NationalID]; ok {
		return fmt.Errorf("national id already registered: %w", sentinel.ErrConflict)
	}
	stored := *donor
	s.donors[donor.ID] = &stored
	s.byNational[donor.NationalID] = donor.ID
	return nil
}

func (s *InMemoryDonorStore) Update(_ context.Context, donor *models.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.donors[donor.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, taken := s.byNational[donor.NationalID]; taken && owner != donor.ID {
		return fmt.Errorf("national id already registered: %w", sentinel.ErrConflict)
	}
	delete(s.byNational, existing.NationalID)
	stored := *donor
	stored.CreatedAt = existing.CreatedAt
	s.donors[donor.ID] = &stored
	s.byNational[donor.NationalID] = donor.ID
	return nil
}

func (s *InMemoryDonorStore) FindByID(_ context.Context, donorID id.DonorID) (*models.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if donor, ok := s.donors[donorID]; ok {
		found := *donor
		return &found, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryDonorStore) FindByNationalID(_ context.Context, nationalID id.NationalID) (*models.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	donorID, ok := s.byNational[nationalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *s.donors[donorID]
	return &found, nil
}

// FindByNationalIDForUpdate is a plain lookup; the in-memory transaction
// already serializes callers per national id.
func (s *InMemoryDonorStore) FindByNationalIDForUpdate(ctx context.Context, nationalID id.NationalID) (*models.Donor, error) {
	return s.FindByNationalID(ctx, nationalID)
}

func (s *InMemoryDonorStore) FindByIDForUpdate(ctx context.Context, donorID id.DonorID) (*models.Donor, error) {
	return s.FindByID(ctx, donorID)
}

// List returns donors ordered by creation time.
func (s *InMemoryDonorStore) List(_ context.Context) ([]*models.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Donor, 0, len(s.donors))
	for _, donor := range s.donors {
		found := *donor
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemoryDonorStore) Delete(_ context.Context, donorID id.DonorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	donor, ok := s.donors[donorID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byNational, donor.NationalID)
	delete(s.donors, donorID)
	return nil
}
