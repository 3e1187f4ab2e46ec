package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sndot/internal/donor/metrics"
	"sndot/internal/donor/models"
	"sndot/internal/donor/validation"
	id "sndot/pkg/domain"
	dErrors "sndot/pkg/domain-errors"
	audit "sndot/pkg/platform/audit"
	"sndot/pkg/platform/sentinel"
	"sndot/pkg/requestcontext"
)

const (
	opRegister = "register"
	opEdit     = "edit"
)

// writeResult carries what the post-commit steps need beyond the Registration.
type writeResult struct {
	reg           *Registration
	donorChanged  bool
	intentChanged bool
	staleIDs      []id.NationalID
}

// Register upserts a donor by national id. Registering the same national id
// again overwrites the stored record instead of creating a second one.
//
// An intent payload with DonateNow set creates or replaces the intent; any
// other payload, or none, deactivates an existing intent.
func (r *Registrar) Register(ctx context.Context, fields models.Fields, intent *models.IntentPayload) (*Registration, error) {
	return r.write(ctx, opRegister, id.DonorID{}, fields, intent)
}

// Edit overwrites the donor identified by donorID. The national id may change
// as long as no other donor holds the new one.
func (r *Registrar) Edit(ctx context.Context, donorID id.DonorID, fields models.Fields, intent *models.IntentPayload) (*Registration, error) {
	if donorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "donor id is required")
	}
	return r.write(ctx, opEdit, donorID, fields, intent)
}

func (r *Registrar) write(ctx context.Context, op string, donorID id.DonorID, fields models.Fields, intent *models.IntentPayload) (*Registration, error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "donor."+op)
	defer span.End()

	now := requestcontext.NowOr(ctx, r.now)
	ctx = requestcontext.WithTime(ctx, now)

	record := fields.Clone()
	validation.Prepare(record, now)
	if errs := r.validate(record, intent, now); errs != nil {
		r.rejected(ctx, op, record, errs)
		span.SetStatus(codes.Error, "validation failed")
		r.metrics.ObserveRegistration(op, metrics.OutcomeRejected, time.Since(start))
		return nil, validationError(errs)
	}

	nationalID, attrs, err := models.DecodeDonor(record)
	if err != nil {
		r.metrics.ObserveRegistration(op, metrics.OutcomeFailed, time.Since(start))
		return nil, err
	}

	// Edit may move a donor off its current national id, so it locks both the
	// id it reads from and the id it writes to.
	lockKeys := []string{nationalID.String()}
	var previous id.NationalID
	if op == opEdit {
		current, err := r.donors.FindByID(ctx, donorID)
		if err != nil {
			err = translate(err, "donor not found")
			r.metrics.ObserveRegistration(op, metrics.OutcomeFailed, time.Since(start))
			span.RecordError(err)
			return nil, err
		}
		previous = current.NationalID
		lockKeys = append(lockKeys, previous.String())
	}

	var res *writeResult
	err = r.tx.RunInTx(WithLockKey(ctx, lockKeys...), func(txCtx context.Context) error {
		var txErr error
		res, txErr = r.apply(txCtx, donorID, previous, nationalID, attrs, intent, now)
		return txErr
	})
	if err != nil {
		err = translate(err, "failed to "+op+" donor")
		outcome := metrics.OutcomeFailed
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			outcome = metrics.OutcomeConflict
		} else if dErrors.HasCode(err, dErrors.CodeValidation) {
			outcome = metrics.OutcomeRejected
		}
		r.metrics.ObserveRegistration(op, outcome, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		return nil, err
	}

	r.committed(ctx, res)

	outcome := metrics.OutcomeUnchanged
	switch {
	case res.reg.Created:
		outcome = metrics.OutcomeCreated
	case res.reg.Updated:
		outcome = metrics.OutcomeUpdated
	}
	r.metrics.ObserveRegistration(op, outcome, time.Since(start))
	span.SetAttributes(
		attribute.String("donor.id", res.reg.Donor.ID.String()),
		attribute.String("registration.outcome", outcome),
	)
	return res.reg, nil
}

// validate runs the donor chain and, for a present payload, the intent chain.
// Under FailFast the intent chain is skipped once the donor chain failed.
func (r *Registrar) validate(record models.Fields, intent *models.IntentPayload, now time.Time) validation.ErrorMap {
	clock := func() time.Time { return now }
	errs := validation.ErrorMap{}
	if err := validation.NewDonorChain(r.policy, clock).Run(record); err != nil {
		m, _ := validation.AsErrorMap(err)
		errs.Merge(m)
		if r.policy == validation.FailFast {
			return errs
		}
	}
	if intent != nil {
		intentFields := map[string]any{
			validation.FieldIntentStatus: string(intent.Status),
			validation.FieldOrgans:       intent.Organs,
		}
		if err := validation.NewIntentChain(r.policy).Run(intentFields); err != nil {
			m, _ := validation.AsErrorMap(err)
			errs.Merge(m)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// apply is the transactional body. Every check, organ resolution included,
// runs before the first write.
func (r *Registrar) apply(ctx context.Context, donorID id.DonorID, previous, nationalID id.NationalID, attrs models.Attributes, intent *models.IntentPayload, now time.Time) (*writeResult, error) {
	var organs []string
	if intent != nil && intent.DonateNow {
		resolved, err := r.linker.ResolveOrgans(ctx, intent.Organs)
		if err != nil {
			return nil, err
		}
		organs = resolved
	}

	existing, err := r.locate(ctx, donorID, previous, nationalID)
	if err != nil {
		return nil, err
	}

	res := &writeResult{}
	var donor *models.Donor
	if existing == nil {
		donor, err = models.NewDonor(id.NewDonorID(), nationalID, attrs, now)
		if err != nil {
			return nil, err
		}
		if err := r.donors.Create(ctx, donor); err != nil {
			return nil, translate(err, "failed to create donor")
		}
		res.donorChanged = true
		res.staleIDs = []id.NationalID{nationalID}
	} else {
		donor = existing
		previous := donor.NationalID
		if donor.Apply(nationalID, attrs, now) {
			if err := r.donors.Update(ctx, donor); err != nil {
				return nil, translate(err, "failed to update donor")
			}
			res.donorChanged = true
			res.staleIDs = []id.NationalID{previous}
			if previous != nationalID {
				res.staleIDs = append(res.staleIDs, nationalID)
			}
		}
	}

	linked, intentChanged, err := r.linker.link(ctx, donor, intent, organs)
	if err != nil {
		return nil, err
	}
	res.intentChanged = intentChanged
	res.reg = &Registration{
		Donor:   donor,
		Intent:  linked,
		Created: existing == nil,
		Updated: existing != nil && (res.donorChanged || intentChanged),
	}
	return res, nil
}

// locate finds the donor a write targets. Register matches on the natural key
// and returns nil for a new donor; Edit requires donorID to exist and rejects a
// national id already held by someone else. previous is the national id Edit
// read before locking; a donor that moved off it since then is a conflict.
func (r *Registrar) locate(ctx context.Context, donorID id.DonorID, previous, nationalID id.NationalID) (*models.Donor, error) {
	holder, err := r.donors.FindByNationalIDForUpdate(ctx, nationalID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, translate(err, "failed to look up donor")
	}
	if err != nil {
		holder = nil
	}
	if donorID.IsNil() {
		return holder, nil
	}

	if holder != nil && holder.ID != donorID {
		return nil, dErrors.New(dErrors.CodeConflict, "national id is already registered to another donor")
	}
	if holder != nil {
		return holder, nil
	}
	donor, err := r.donors.FindByIDForUpdate(ctx, donorID)
	if err != nil {
		return nil, translate(err, "donor not found")
	}
	if donor.NationalID != previous {
		return nil, dErrors.New(dErrors.CodeConflict, "donor changed concurrently")
	}
	return donor, nil
}

// committed runs after the transaction: cache invalidation and audit events.
// Neither can undo the write, so failures are logged only.
func (r *Registrar) committed(ctx context.Context, res *writeResult) {
	reg := res.reg
	if r.cache != nil && len(res.staleIDs) > 0 {
		if err := r.cache.Invalidate(ctx, res.staleIDs...); err != nil {
			r.logger.WarnContext(ctx, "failed to invalidate donor cache",
				"donor_id", reg.Donor.ID.String(),
				"error", err,
			)
		}
	}

	base := audit.Event{
		DonorID: reg.Donor.ID,
		Subject: reg.Donor.NationalID.Masked(),
	}
	if reg.Created {
		r.emitAs(ctx, base, audit.EventDonorRegistered, "")
	} else if res.donorChanged {
		r.emitAs(ctx, base, audit.EventDonorUpdated, "")
	}
	if res.intentChanged && reg.Intent != nil {
		if reg.Intent.DonateNow {
			r.emitAs(ctx, base, audit.EventIntentActivated, string(reg.Intent.Status))
		} else {
			r.emitAs(ctx, base, audit.EventIntentDeactivated, string(reg.Intent.Status))
		}
	}

	r.logger.InfoContext(ctx, "donor registration committed",
		"donor_id", reg.Donor.ID.String(),
		"created", reg.Created,
		"updated", reg.Updated,
		"request_id", requestcontext.RequestID(ctx),
	)
}

// rejected records a validation failure. Submissions tripping the injection
// heuristics also produce a security audit event.
func (r *Registrar) rejected(ctx context.Context, op string, record models.Fields, errs validation.ErrorMap) {
	for _, field := range errs.Fields() {
		for _, fe := range errs[field] {
			r.metrics.IncValidationFailure(field, string(fe.Kind))
		}
	}
	r.logger.InfoContext(ctx, "donor record rejected",
		"operation", op,
		"fields", errs.Fields(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if !errs.HasKind(validation.KindSecurity) {
		return
	}
	subject := ""
	if raw, ok := validation.AsString(record[validation.FieldNationalID]); ok {
		if nid, err := id.ParseNationalID(raw); err == nil {
			subject = nid.Masked()
		}
	}
	var flagged []string
	for _, field := range errs.Fields() {
		if errs.Has(field, validation.KindSecurity) {
			flagged = append(flagged, field)
		}
	}
	r.emitAs(ctx, audit.Event{Subject: subject}, audit.EventRegistrationRejected, "injection pattern in "+strings.Join(flagged, ","))
}

func (r *Registrar) emitAs(ctx context.Context, base audit.Event, action audit.AuditEvent, reason string) {
	base.Action = string(action)
	base.Reason = reason
	r.emit(ctx, base)
}

// emit fills request metadata and hands the event to the publisher. Audit
// failures never fail the operation that produced the event.
func (r *Registrar) emit(ctx context.Context, event audit.Event) {
	if r.auditor == nil {
		return
	}
	event.Category = audit.AuditEvent(event.Action).Category()
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.NowOr(ctx, r.now)
	}
	if err := r.auditor.Emit(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
