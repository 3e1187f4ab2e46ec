package intent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sndot/internal/donor/models"
	id "sndot/pkg/domain"
	"sndot/pkg/platform/sentinel"
)

type InMemoryIntentStoreSuite struct {
	suite.Suite
	store *InMemoryIntentStore
	ctx   context.Context
}

func TestInMemoryIntentStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryIntentStoreSuite))
}

func (s *InMemoryIntentStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func (s *InMemoryIntentStoreSuite) TestSaveIsKeyedByDonor() {
	donorID := id.NewDonorID()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := &models.DonationIntent{
		ID:        id.NewIntentID(),
		DonorID:   donorID,
		Status:    models.IntentStatusActive,
		DonateNow: true,
		Organs:    []string{"Rins"},
		CreatedAt: created,
		UpdatedAt: created,
	}
	s.Require().NoError(s.store.Save(s.ctx, first))

	second := &models.DonationIntent{
		ID:        id.NewIntentID(),
		DonorID:   donorID,
		Status:    models.IntentStatusActive,
		DonateNow: true,
		Organs:    []string{"Pele"},
		CreatedAt: created.Add(time.Hour),
		UpdatedAt: created.Add(time.Hour),
	}
	s.Require().NoError(s.store.Save(s.ctx, second))
	s.Equal(first.ID, second.ID, "upsert keeps the original id")
	s.Equal(created, second.CreatedAt, "upsert keeps the original creation time")

	found, err := s.store.FindByDonor(s.ctx, donorID)
	s.Require().NoError(err)
	s.Equal([]string{"Pele"}, found.Organs)
	s.Equal(created.Add(time.Hour), found.UpdatedAt)
}

func (s *InMemoryIntentStoreSuite) TestOrgansAreNotAliased() {
	intent := &models.DonationIntent{ID: id.NewIntentID(), DonorID: id.NewDonorID(), Organs: []string{"Rins"}}
	s.Require().NoError(s.store.Save(s.ctx, intent))
	intent.Organs[0] = "Pele"

	found, err := s.store.FindByDonor(s.ctx, intent.DonorID)
	s.Require().NoError(err)
	s.Equal([]string{"Rins"}, found.Organs)
}

func (s *InMemoryIntentStoreSuite) TestDeleteByDonor() {
	intent := &models.DonationIntent{ID: id.NewIntentID(), DonorID: id.NewDonorID()}
	s.Require().NoError(s.store.Save(s.ctx, intent))
	s.Require().NoError(s.store.DeleteByDonor(s.ctx, intent.DonorID))

	_, err := s.store.FindByDonor(s.ctx, intent.DonorID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.NoError(s.store.DeleteByDonor(s.ctx, intent.DonorID), "deleting nothing is fine")
}
