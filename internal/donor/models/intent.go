package models

import (
	"sort"
	"time"

	id "sndot/pkg/domain"
	pstrings "sndot/pkg/platform/strings"
)

// IntentStatus is the lifecycle state of a donation intent.
type IntentStatus string

const (
	IntentStatusActive    IntentStatus = "active"
	IntentStatusInactive  IntentStatus = "inactive"
	IntentStatusCompleted IntentStatus = "completed"
)

func (s IntentStatus) IsValid() bool {
	switch s {
	case IntentStatusActive, IntentStatusInactive, IntentStatusCompleted:
		return true
	}
	return false
}

// DonationIntent records a donor's current willingness to donate.
//
// Invariants:
//   - At most one intent per donor; deleting the donor deletes it
//   - CreatedAt is set once
//   - Organs is replaced as a whole, never merged
type DonationIntent struct {
	ID        id.IntentID  `json:"id"`
	DonorID   id.DonorID   `json:"donor_id"`
	Status    IntentStatus `json:"status"`
	DonateNow bool         `json:"donate_now"`
	Organs    []string     `json:"organs"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// IntentPayload is the optional intent part of a registration or edit call.
type IntentPayload struct {
	DonateNow bool         `json:"donate_now"`
	Status    IntentStatus `json:"status,omitempty"`
	Organs    []string     `json:"organs"`
}

// EffectiveStatus defaults an empty status to active.
func (p IntentPayload) EffectiveStatus() IntentStatus {
	if p.Status == "" {
		return IntentStatusActive
	}
	return p.Status
}

// NormalizeOrgans returns the distinct, trimmed organ names in sorted order.
// Organs form a set; order never carries meaning.
func NormalizeOrgans(names []string) []string {
	out := pstrings.DedupeAndTrim(names)
	if len(out) == 0 {
		return []string{}
	}
	sort.Strings(out)
	return out
}

// ApplyDeactivation turns the intent off without touching its organs.
// It reports whether anything changed.
func (i *DonationIntent) ApplyDeactivation(now time.Time) bool {
	if !i.DonateNow && i.Status == IntentStatusInactive {
		return false
	}
	i.DonateNow = false
	i.Status = IntentStatusInactive
	i.UpdatedAt = now
	return true
}

// Apply sets status, flag and the full organ set. It reports whether anything changed.
func (i *DonationIntent) Apply(p IntentPayload, organs []string, now time.Time) bool {
	status := p.EffectiveStatus()
	if i.DonateNow == p.DonateNow && i.Status == status && equalStrings(i.Organs, organs) {
		return false
	}
	i.DonateNow = p.DonateNow
	i.Status = status
	i.Organs = organs
	i.UpdatedAt = now
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
