package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sndot/internal/donor/validation"
	id "sndot/pkg/domain"
	dErrors "sndot/pkg/domain-errors"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func validFields() Fields {
	return Fields{
		validation.FieldNationalID:       "111.444.777-35",
		validation.FieldName:             "Maria Silva",
		validation.FieldAge:              "30",
		validation.FieldSex:              "F",
		validation.FieldBirthDate:        "1995-03-10",
		validation.FieldBirthCity:        "Recife",
		validation.FieldBirthState:       "PE",
		validation.FieldProfession:       "Médico",
		validation.FieldResidenceCity:    "Olinda",
		validation.FieldResidenceState:   "PE",
		validation.FieldEmergencyContact: "81999990000",
		validation.FieldBloodType:        "O+",
	}
}

func TestDecodeDonor(t *testing.T) {
	t.Run("decodes a validated field map", func(t *testing.T) {
		nationalID, attrs, err := DecodeDonor(validFields())
		require.NoError(t, err)
		assert.Equal(t, id.NationalID("11144477735"), nationalID)
		assert.Equal(t, "Maria Silva", attrs.Name)
		assert.Equal(t, 30, attrs.Age)
		assert.Equal(t, time.Date(1995, 3, 10, 0, 0, 0, 0, time.UTC), attrs.BirthDate)
		assert.Equal(t, "Médico", attrs.Profession)
		assert.Empty(t, attrs.MaritalStatus)
	})

	t.Run("other profession replaces the placeholder", func(t *testing.T) {
		f := validFields()
		f[validation.FieldProfession] = validation.ProfessionOther
		f[validation.FieldOtherProfession] = "  Bombeiro "
		_, attrs, err := DecodeDonor(f)
		require.NoError(t, err)
		assert.Equal(t, "Bombeiro", attrs.Profession)
	})

	t.Run("non-text values are never coerced to empty text", func(t *testing.T) {
		f := validFields()
		f[validation.FieldEmergencyContact] = json.Number("5")
		f[validation.FieldBirthCity] = []any{"Recife"}
		_, attrs, err := DecodeDonor(f)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		assert.Contains(t, err.Error(), validation.FieldBirthCity)
		assert.Contains(t, err.Error(), validation.FieldEmergencyContact)
		assert.Empty(t, attrs.Name)
	})

	t.Run("unvalidated input is an invariant violation", func(t *testing.T) {
		f := validFields()
		f[validation.FieldAge] = "abc"
		_, _, err := DecodeDonor(f)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestDonorApply(t *testing.T) {
	nationalID, attrs, err := DecodeDonor(validFields())
	require.NoError(t, err)
	donor, err := NewDonor(id.NewDonorID(), nationalID, attrs, now)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	assert.False(t, donor.Apply(nationalID, attrs, later), "identical attributes are not a change")
	assert.Equal(t, now, donor.UpdatedAt)

	changed := attrs
	changed.Age = 31
	assert.True(t, donor.Apply(nationalID, changed, later))
	assert.Equal(t, 31, donor.Age)
	assert.Equal(t, later, donor.UpdatedAt)
	assert.Equal(t, now, donor.CreatedAt)
}

func TestAttributesEqualComparesBirthInstant(t *testing.T) {
	a := Attributes{Name: "Ana", BirthDate: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)}
	b := a
	b.BirthDate = a.BirthDate.In(time.FixedZone("BRT", -3*3600))
	assert.True(t, a.Equal(b))
}

func TestNewDonorRejectsInvalidIdentity(t *testing.T) {
	_, err := NewDonor(id.DonorID{}, "11144477735", Attributes{}, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewDonor(id.NewDonorID(), "11144477734", Attributes{}, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestIntentTransitions(t *testing.T) {
	intent := &DonationIntent{
		ID:        id.NewIntentID(),
		DonorID:   id.NewDonorID(),
		Status:    IntentStatusActive,
		DonateNow: true,
		Organs:    []string{"Rins"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	later := now.Add(time.Minute)

	t.Run("apply replaces the organ set", func(t *testing.T) {
		organs := NormalizeOrgans([]string{"Pele", "Córneas"})
		changed := intent.Apply(IntentPayload{DonateNow: true}, organs, later)
		assert.True(t, changed)
		assert.Equal(t, []string{"Córneas", "Pele"}, intent.Organs)
		assert.Equal(t, now, intent.CreatedAt)
	})

	t.Run("apply with the same content is a no-op", func(t *testing.T) {
		assert.False(t, intent.Apply(IntentPayload{DonateNow: true}, []string{"Córneas", "Pele"}, later.Add(time.Minute)))
		assert.Equal(t, later, intent.UpdatedAt)
	})

	t.Run("deactivation keeps organs", func(t *testing.T) {
		assert.True(t, intent.ApplyDeactivation(later))
		assert.False(t, intent.DonateNow)
		assert.Equal(t, IntentStatusInactive, intent.Status)
		assert.Equal(t, []string{"Córneas", "Pele"}, intent.Organs)
		assert.False(t, intent.ApplyDeactivation(later), "second deactivation changes nothing")
	})
}

func TestIntentPayloadEffectiveStatus(t *testing.T) {
	assert.Equal(t, IntentStatusActive, IntentPayload{}.EffectiveStatus())
	assert.Equal(t, IntentStatusCompleted, IntentPayload{Status: IntentStatusCompleted}.EffectiveStatus())
	assert.True(t, IntentStatusCompleted.IsValid())
	assert.False(t, IntentStatus("paused").IsValid())
}

func TestNormalizeOrgans(t *testing.T) {
	assert.Equal(t, []string{}, NormalizeOrgans(nil))
	assert.Equal(t, []string{"Pele", "Rins"}, NormalizeOrgans([]string{"Rins", " Pele", "Rins", ""}))
}

func TestOrganCatalogHasSixteenDistinctNames(t *testing.T) {
	assert.Len(t, OrganCatalog, 16)
	assert.Len(t, NormalizeOrgans(OrganCatalog), 16)
}
