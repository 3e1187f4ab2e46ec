package domain

import (
	"github.com/google/uuid"

	dErrors "sndot/pkg/domain-errors"
)

// Typed surrogate identifiers. Distinct types keep a donor id from being passed
// where an intent or organ id is expected.
type (
	DonorID  uuid.UUID
	IntentID uuid.UUID
	OrganID  uuid.UUID
)

func (id DonorID) String() string  { return uuid.UUID(id).String() }
func (id IntentID) String() string { return uuid.UUID(id).String() }
func (id OrganID) String() string  { return uuid.UUID(id).String() }

func (id DonorID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id IntentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id OrganID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func NewDonorID() DonorID   { return DonorID(uuid.New()) }
func NewIntentID() IntentID { return IntentID(uuid.New()) }
func NewOrganID() OrganID   { return OrganID(uuid.New()) }

// ParseDonorID parses a donor id at a trust boundary.
func ParseDonorID(s string) (DonorID, error) {
	u, err := parseUUID(s, "donor id")
	return DonorID(u), err
}

// ParseIntentID parses an intent id at a trust boundary.
func ParseIntentID(s string) (IntentID, error) {
	u, err := parseUUID(s, "intent id")
	return IntentID(u), err
}

// ParseOrganID parses an organ id at a trust boundary.
func ParseOrganID(s string) (OrganID, error) {
	u, err := parseUUID(s, "organ id")
	return OrganID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

// Text encoding keeps ids readable in JSON payloads and cache entries.

func (id DonorID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id IntentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id OrganID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *DonorID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *IntentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *OrganID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
