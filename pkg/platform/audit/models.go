package audit

import (
	"context"
	"time"

	id "sndot/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks
// can route and retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers changes to donor records and donation intents.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers submissions rejected by the injection heuristics.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity such as catalog seeding and imports.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted after registry writes commit. It never carries the raw
// national id; Subject holds the masked form.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	DonorID   id.DonorID    `json:"donor_id"`
	Subject   string        `json:"subject"`
	Action    string        `json:"action"`
	Decision  string        `json:"decision,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	ClientIP  string        `json:"client_ip,omitempty"`
}

// Key is the partition key sinks use so one donor's events stay ordered.
func (e Event) Key() string {
	if e.DonorID.IsNil() {
		return e.Subject
	}
	return e.DonorID.String()
}

type AuditEvent string

const (
	EventDonorRegistered   AuditEvent = "donor_registered"
	EventDonorUpdated      AuditEvent = "donor_updated"
	EventDonorDeleted      AuditEvent = "donor_deleted"
	EventIntentActivated   AuditEvent = "intent_activated"
	EventIntentDeactivated AuditEvent = "intent_deactivated"

	EventRegistrationRejected AuditEvent = "registration_rejected"

	EventOrganSeeded     AuditEvent = "organ_seeded"
	EventImportCompleted AuditEvent = "import_completed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDonorRegistered:   CategoryCompliance,
	EventDonorUpdated:      CategoryCompliance,
	EventDonorDeleted:      CategoryCompliance,
	EventIntentActivated:   CategoryCompliance,
	EventIntentDeactivated: CategoryCompliance,

	EventRegistrationRejected: CategorySecurity,

	EventOrganSeeded:     CategoryOperations,
	EventImportCompleted: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store is an append-only audit sink.
type Store interface {
	Append(ctx context.Context, event Event) error
}
