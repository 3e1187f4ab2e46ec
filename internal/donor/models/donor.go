package models

import (
	"strings"
	"time"

	"sndot/internal/donor/validation"
	id "sndot/pkg/domain"
	dErrors "sndot/pkg/domain-errors"
)

// Donor is a registered person identified by NationalID.
//
// Invariants:
//   - NationalID is a checksum-valid CPF and unique across donors
//   - Attributes only change through the registrar, after the full field set validates
//   - CreatedAt is immutable after construction
type Donor struct {
	ID         id.DonorID    `json:"id"`
	NationalID id.NationalID `json:"national_id"`
	Attributes
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attributes are the mutable donor fields.
type Attributes struct {
	Name             string    `json:"name"`
	Age              int       `json:"age"`
	Sex              string    `json:"sex"`
	BirthDate        time.Time `json:"birth_date"`
	BirthCity        string    `json:"birth_city"`
	BirthState       string    `json:"birth_state"`
	Profession       string    `json:"profession,omitempty"`
	ResidenceCity    string    `json:"residence_city"`
	ResidenceState   string    `json:"residence_state"`
	MaritalStatus    string    `json:"marital_status,omitempty"`
	EmergencyContact string    `json:"emergency_contact"`
	BloodType        string    `json:"blood_type"`
}

// Equal compares attributes, treating birth dates as calendar instants.
func (a Attributes) Equal(b Attributes) bool {
	birthA, birthB := a.BirthDate, b.BirthDate
	a.BirthDate, b.BirthDate = time.Time{}, time.Time{}
	return a == b && birthA.Equal(birthB)
}

func NewDonor(donorID id.DonorID, nationalID id.NationalID, attrs Attributes, now time.Time) (*Donor, error) {
	if donorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "donor id cannot be nil")
	}
	if _, err := id.ParseNationalID(nationalID.String()); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "donor national id is invalid")
	}
	return &Donor{
		ID:         donorID,
		NationalID: nationalID,
		Attributes: attrs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Apply overwrites every mutable field and reports whether anything changed.
func (d *Donor) Apply(nationalID id.NationalID, attrs Attributes, now time.Time) bool {
	if d.NationalID == nationalID && d.Attributes.Equal(attrs) {
		return false
	}
	d.NationalID = nationalID
	d.Attributes = attrs
	d.UpdatedAt = now
	return true
}

// Fields is the flat value map the form and import layers hand to the registrar.
type Fields map[string]any

// Clone returns a shallow copy so normalization never leaks into the caller's map.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// DecodeDonor converts a field map that already passed the donor chain.
func DecodeDonor(f Fields) (id.NationalID, Attributes, error) {
	raw, _ := validation.AsString(f[validation.FieldNationalID])
	nationalID, err := id.ParseNationalID(raw)
	if err != nil {
		return "", Attributes{}, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "decode national id")
	}
	age, ok := validation.AsInt(f[validation.FieldAge])
	if !ok {
		return "", Attributes{}, dErrors.New(dErrors.CodeInvariantViolation, "decode age")
	}
	birth, ok := validation.AsDate(f[validation.FieldBirthDate])
	if !ok {
		return "", Attributes{}, dErrors.New(dErrors.CodeInvariantViolation, "decode birth date")
	}

	var bad []string
	text := func(field string) string {
		v := f[field]
		if validation.IsEmpty(v) {
			return ""
		}
		s, ok := validation.AsString(v)
		if !ok {
			bad = append(bad, field)
		}
		return s
	}
	profession := text(validation.FieldProfession)
	if profession == validation.ProfessionOther {
		profession = text(validation.FieldOtherProfession)
	}

	attrs := Attributes{
		Name:             text(validation.FieldName),
		Age:              age,
		Sex:              text(validation.FieldSex),
		BirthDate:        birth,
		BirthCity:        text(validation.FieldBirthCity),
		BirthState:       text(validation.FieldBirthState),
		Profession:       profession,
		ResidenceCity:    text(validation.FieldResidenceCity),
		ResidenceState:   text(validation.FieldResidenceState),
		MaritalStatus:    text(validation.FieldMaritalStatus),
		EmergencyContact: text(validation.FieldEmergencyContact),
		BloodType:        text(validation.FieldBloodType),
	}
	if len(bad) > 0 {
		return "", Attributes{}, dErrors.New(dErrors.CodeInvariantViolation,
			"decode text fields: "+strings.Join(bad, ", "))
	}
	return nationalID, attrs, nil
}
