package service

import (
	"context"
	"errors"
	"strings"

	"sndot/internal/donor/models"
	"sndot/internal/donor/validation"
	id "sndot/pkg/domain"
	"sndot/pkg/platform/sentinel"
	"sndot/pkg/requestcontext"
)

// IntentLinker keeps a donor's single donation intent in step with the latest
// submission. It must run inside the registrar's transaction.
type IntentLinker struct {
	intents IntentStore
	organs  OrganStore
}

func NewIntentLinker(intents IntentStore, organs OrganStore) *IntentLinker {
	return &IntentLinker{intents: intents, organs: organs}
}

// ResolveOrgans normalizes names into a set and checks each against the
// catalog. Unknown names fail as a validation error on the organs field.
func (l *IntentLinker) ResolveOrgans(ctx context.Context, names []string) ([]string, error) {
	wanted := models.NormalizeOrgans(names)
	if len(wanted) == 0 {
		return wanted, nil
	}
	found, err := l.organs.FindByNames(ctx, wanted)
	if err != nil {
		return nil, translate(err, "failed to look up organs")
	}
	known := make(map[string]struct{}, len(found))
	for _, o := range found {
		known[o.Name] = struct{}{}
	}
	var unknown []string
	for _, name := range wanted {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		errs := validation.ErrorMap{}
		errs.Add(validation.RuleViolation(validation.FieldOrgans, "unknown organ: "+strings.Join(unknown, ", ")))
		return nil, validationError(errs)
	}
	return wanted, nil
}

// UpsertIntent creates or replaces the donor's intent. The organ set is
// replaced wholesale; the creation time is kept from the first write.
func (l *IntentLinker) UpsertIntent(ctx context.Context, donor *models.Donor, payload models.IntentPayload) (*models.DonationIntent, error) {
	organs, err := l.ResolveOrgans(ctx, payload.Organs)
	if err != nil {
		return nil, err
	}
	intent, _, err := l.upsertResolved(ctx, donor, payload, organs)
	return intent, err
}

func (l *IntentLinker) upsertResolved(ctx context.Context, donor *models.Donor, payload models.IntentPayload, organs []string) (*models.DonationIntent, bool, error) {
	now := requestcontext.Now(ctx)
	existing, err := l.find(ctx, donor.ID)
	if err != nil {
		return nil, false, err
	}

	intent := existing
	if intent == nil {
		intent = &models.DonationIntent{
			ID:        id.NewIntentID(),
			DonorID:   donor.ID,
			CreatedAt: now,
		}
	}
	if !intent.Apply(payload, organs, now) && existing != nil {
		return intent, false, nil
	}
	if err := l.intents.Save(ctx, intent); err != nil {
		return nil, false, translate(err, "failed to save donation intent")
	}
	return intent, true, nil
}

// Deactivate turns the donor's intent off, keeping its organs. A donor
// without an intent stays without one and nil is returned.
func (l *IntentLinker) Deactivate(ctx context.Context, donor *models.Donor) (*models.DonationIntent, error) {
	intent, _, err := l.deactivate(ctx, donor)
	return intent, err
}

func (l *IntentLinker) deactivate(ctx context.Context, donor *models.Donor) (*models.DonationIntent, bool, error) {
	intent, err := l.find(ctx, donor.ID)
	if err != nil || intent == nil {
		return nil, false, err
	}
	if !intent.ApplyDeactivation(requestcontext.Now(ctx)) {
		return intent, false, nil
	}
	if err := l.intents.Save(ctx, intent); err != nil {
		return nil, false, translate(err, "failed to deactivate donation intent")
	}
	return intent, true, nil
}

// Current returns the donor's intent, or nil when there is none.
func (l *IntentLinker) Current(ctx context.Context, donorID id.DonorID) (*models.DonationIntent, error) {
	return l.find(ctx, donorID)
}

func (l *IntentLinker) find(ctx context.Context, donorID id.DonorID) (*models.DonationIntent, error) {
	intent, err := l.intents.FindByDonor(ctx, donorID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "failed to load donation intent")
	}
	return intent, nil
}

// link applies a submission's intent part: a payload asking to donate now is
// upserted, anything else deactivates an existing intent.
func (l *IntentLinker) link(ctx context.Context, donor *models.Donor, payload *models.IntentPayload, organs []string) (*models.DonationIntent, bool, error) {
	if payload != nil && payload.DonateNow {
		return l.upsertResolved(ctx, donor, *payload, organs)
	}
	return l.deactivate(ctx, donor)
}
