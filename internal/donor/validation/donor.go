package validation

import (
	"time"
)

// Donor field names as they arrive from the form and import layers.
const (
	FieldNationalID       = "national_id"
	FieldName             = "name"
	FieldAge              = "age"
	FieldSex              = "sex"
	FieldBirthDate        = "birth_date"
	FieldBirthCity        = "birth_city"
	FieldBirthState       = "birth_state"
	FieldProfession       = "profession"
	FieldOtherProfession  = "other_profession"
	FieldResidenceCity    = "residence_city"
	FieldResidenceState   = "residence_state"
	FieldMaritalStatus    = "marital_status"
	FieldEmergencyContact = "emergency_contact"
	FieldBloodType        = "blood_type"

	// FieldOrgans carries intent organ failures; it is not part of the donor record.
	FieldOrgans = "organs"
	// FieldIntentStatus carries intent status failures.
	FieldIntentStatus = "intent_status"
)

const (
	MinAge = 0
	MaxAge = 125

	// ProfessionOther is the escape value; the real profession is then read from
	// FieldOtherProfession.
	ProfessionOther = "Outra"
)

var (
	SexValues           = []string{"M", "F"}
	BloodTypeValues     = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	MaritalStatusValues = []string{"Solteiro", "Casado", "Divorciado", "Viuvo", "União Estável"}
	StateValues         = []string{
		"AC", "AL", "AM", "AP", "BA", "CE", "DF", "ES", "GO", "MA", "MG", "MS", "MT", "PA",
		"PB", "PE", "PI", "PR", "RJ", "RN", "RO", "RR", "RS", "SC", "SE", "SP", "TO",
	}
	IntentStatusValues = []string{"active", "inactive", "completed"}
)

// NewDonorChain composes the donor rule set under policy. now supplies the clock
// for birth date checks.
func NewDonorChain(policy Policy, now func() time.Time) *Chain {
	return NewChain(policy).
		Field(FieldNationalID, Required(), NationalID()).
		Field(FieldName, PersonName(), MaxLength(255)).
		Field(FieldAge, Required(), IntRange(MinAge, MaxAge)).
		Field(FieldSex, Required(), OneOf(SexValues...)).
		Field(FieldBirthDate, Required(), PastDate(now)).
		Field(FieldBirthCity, Required(), Text(), MaxLength(100)).
		Field(FieldBirthState, Required(), OneOf(StateValues...)).
		Field(FieldProfession, Text(), MaxLength(100)).
		Field(FieldOtherProfession, Text(), MaxLength(100)).
		Field(FieldResidenceCity, Required(), Text(), MaxLength(100)).
		Field(FieldResidenceState, Required(), OneOf(StateValues...)).
		Field(FieldMaritalStatus, OneOf(MaritalStatusValues...)).
		Field(FieldEmergencyContact, Required(), Text(), MaxLength(255)).
		Field(FieldBloodType, Required(), OneOf(BloodTypeValues...)).
		Record(OtherProfessionRequired()).
		Sweep(SecurityRules()...)
}

// OtherProfessionRequired demands a concrete profession when the escape value is chosen.
func OtherProfessionRequired() RecordRule {
	return RecordRuleFunc(func(fields map[string]any) error {
		p, _ := AsString(fields[FieldProfession])
		if p != ProfessionOther {
			return nil
		}
		if IsEmpty(fields[FieldOtherProfession]) {
			return ruleError(FieldOtherProfession, "is required when profession is "+ProfessionOther)
		}
		return nil
	})
}

// Prepare normalizes a record before Run: a parseable birth date becomes a
// time.Time (so date separators never reach the security sweep) and a missing age
// is derived from it. fields is modified in place.
func Prepare(fields map[string]any, now time.Time) {
	if d, ok := AsDate(fields[FieldBirthDate]); ok {
		fields[FieldBirthDate] = d
	}
	DeriveAge(fields, now)
}

// DeriveAge fills FieldAge from FieldBirthDate when the caller left it out.
// fields is modified in place.
func DeriveAge(fields map[string]any, now time.Time) {
	if !IsEmpty(fields[FieldAge]) {
		return
	}
	birth, ok := AsDate(fields[FieldBirthDate])
	if !ok {
		return
	}
	fields[FieldAge] = AgeAt(birth, now)
}

// NewIntentChain checks the optional intent part of a submission. Organ names
// are swept for injection patterns here; whether they exist is decided against
// the catalog at write time.
func NewIntentChain(policy Policy) *Chain {
	return NewChain(policy).
		Field(FieldIntentStatus, OneOf(IntentStatusValues...)).
		Sweep(SecurityRules()...)
}
