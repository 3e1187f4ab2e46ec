package organ

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"sndot/internal/donor/models"
	id "sndot/pkg/domain"
	"sndot/pkg/platform/sentinel"
)

type InMemoryOrganStoreSuite struct {
	suite.Suite
	store *InMemoryOrganStore
	ctx   context.Context
}

func TestInMemoryOrganStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryOrganStoreSuite))
}

func (s *InMemoryOrganStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	for _, name := range []string{"Rins", "Coração", "Pele"} {
		s.Require().NoError(s.store.Create(s.ctx, &models.Organ{ID: id.NewOrganID(), Name: name}))
	}
}

func (s *InMemoryOrganStoreSuite) TestNamesAreUnique() {
	err := s.store.Create(s.ctx, &models.Organ{ID: id.NewOrganID(), Name: "Rins"})
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryOrganStoreSuite) TestFindByNamesSkipsUnknown() {
	found, err := s.store.FindByNames(s.ctx, []string{"Rins", "Baço", "Coração"})
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal("Coração", found[0].Name)
	s.Equal("Rins", found[1].Name)
}

func (s *InMemoryOrganStoreSuite) TestListIsSorted() {
	organs, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	names := make([]string, 0, len(organs))
	for _, o := range organs {
		names = append(names, o.Name)
	}
	s.Equal([]string{"Coração", "Pele", "Rins"}, names)
}
