package organ

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sndot/internal/donor/models"
	"sndot/pkg/platform/sentinel"
)

type InMemoryOrganStore struct {
	mu     sync.RWMutex
	organs map[string]*models.Organ
}

func New() *InMemoryOrganStore {
	return &InMemoryOrganStore{organs: make(map[string]*models.Organ)}
}

func (s *InMemoryOrganStore) Create(_ context.Context, organ *models.Organ) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.organs[organ.Name]; ok {
		return fmt.Errorf("organ %q: %w", organ.Name, sentinel.ErrConflict)
	}
	stored := *organ
	s.organs[organ.Name] = &stored
	return nil
}

// FindByNames returns the organs that exist, in name order. Missing names are
// simply absent from the result.
func (s *InMemoryOrganStore) FindByNames(_ context.Context, names []string) ([]*models.Organ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Organ, 0, len(names))
	for _, name := range names {
		if organ, ok := s.organs[name]; ok {
			found := *organ
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryOrganStore) List(_ context.Context) ([]*models.Organ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Organ, 0, len(s.organs))
	for _, organ := range s.organs {
		found := *organ
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
