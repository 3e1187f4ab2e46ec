package service

import (
	"context"
	"errors"

	"sndot/internal/donor/models"
	id "sndot/pkg/domain"
	dErrors "sndot/pkg/domain-errors"
	audit "sndot/pkg/platform/audit"
	"sndot/pkg/platform/sentinel"
)

const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

// Get returns a donor with its intent.
func (r *Registrar) Get(ctx context.Context, donorID id.DonorID) (*Registration, error) {
	donor, err := r.donors.FindByID(ctx, donorID)
	if err != nil {
		return nil, translate(err, "donor not found")
	}
	return r.withIntent(ctx, donor)
}

// GetByNationalID looks a donor up by CPF in any punctuation. Reads go through
// the cache when one is configured; a cache failure falls back to the store.
func (r *Registrar) GetByNationalID(ctx context.Context, raw string) (*Registration, error) {
	nationalID, err := id.ParseNationalID(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid national id")
	}

	if r.cache != nil {
		donor, err := r.cache.Get(ctx, nationalID)
		switch {
		case err == nil:
			r.metrics.IncCacheLookup(cacheHit)
			return r.withIntent(ctx, donor)
		case errors.Is(err, sentinel.ErrNotFound):
			r.metrics.IncCacheLookup(cacheMiss)
		default:
			r.metrics.IncCacheLookup(cacheError)
			r.logger.WarnContext(ctx, "donor cache read failed", "error", err)
		}
	}

	donor, err := r.donors.FindByNationalID(ctx, nationalID)
	if err != nil {
		return nil, translate(err, "donor not found")
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, donor); err != nil {
			r.logger.WarnContext(ctx, "donor cache write failed", "error", err)
		}
	}
	return r.withIntent(ctx, donor)
}

func (r *Registrar) withIntent(ctx context.Context, donor *models.Donor) (*Registration, error) {
	intent, err := r.linker.Current(ctx, donor.ID)
	if err != nil {
		return nil, err
	}
	return &Registration{Donor: donor, Intent: intent}, nil
}

// List returns every donor ordered by creation time.
func (r *Registrar) List(ctx context.Context) ([]*models.Donor, error) {
	donors, err := r.donors.List(ctx)
	if err != nil {
		return nil, translate(err, "failed to list donors")
	}
	return donors, nil
}

// Delete removes a donor together with its intent.
func (r *Registrar) Delete(ctx context.Context, donorID id.DonorID) error {
	ctx, span := r.tracer.Start(ctx, "donor.delete")
	defer span.End()

	// Lock on the national id, the key registrations and edits lock on.
	current, err := r.donors.FindByID(ctx, donorID)
	if err != nil {
		span.RecordError(err)
		return translate(err, "failed to delete donor")
	}

	var deleted *models.Donor
	err = r.tx.RunInTx(WithLockKey(ctx, current.NationalID.String()), func(txCtx context.Context) error {
		donor, err := r.donors.FindByIDForUpdate(txCtx, donorID)
		if err != nil {
			return err
		}
		if donor.NationalID != current.NationalID {
			return dErrors.New(dErrors.CodeConflict, "donor changed concurrently")
		}
		if err := r.intents.DeleteByDonor(txCtx, donorID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		if err := r.donors.Delete(txCtx, donorID); err != nil {
			return err
		}
		deleted = donor
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return translate(err, "failed to delete donor")
	}

	if r.cache != nil {
		if err := r.cache.Invalidate(ctx, deleted.NationalID); err != nil {
			r.logger.WarnContext(ctx, "failed to invalidate donor cache", "error", err)
		}
	}
	r.metrics.IncDonorsDeleted()
	r.emitAs(ctx, audit.Event{DonorID: deleted.ID, Subject: deleted.NationalID.Masked()}, audit.EventDonorDeleted, "")
	return nil
}
