// Package importer loads donor records from a JSON array and registers each one
// through the registrar.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"sndot/internal/donor/models"
	"sndot/internal/donor/service"
	"sndot/internal/donor/validation"
	dErrors "sndot/pkg/domain-errors"
	"sndot/pkg/requestcontext"
)

// Registrar is the write surface the importer drives.
type Registrar interface {
	Register(ctx context.Context, fields models.Fields, intent *models.IntentPayload) (*service.Registration, error)
}

// Record is one element of the import file. Files exported by the earlier
// registry carry the donor under "dados" with Portuguese keys; those are
// accepted too. Their "intencao" block was never imported and is ignored.
type Record struct {
	Donor  models.Fields         `json:"donor"`
	Intent *models.IntentPayload `json:"intent,omitempty"`
}

var legacyFieldNames = map[string]string{
	"cpf":                validation.FieldNationalID,
	"nome":               validation.FieldName,
	"idade":              validation.FieldAge,
	"sexo":               validation.FieldSex,
	"data_nascimento":    validation.FieldBirthDate,
	"cidade_natal":       validation.FieldBirthCity,
	"estado_natal":       validation.FieldBirthState,
	"profissao":          validation.FieldProfession,
	"cidade_residencia":  validation.FieldResidenceCity,
	"estado_residencia":  validation.FieldResidenceState,
	"estado_civil":       validation.FieldMaritalStatus,
	"contato_emergencia": validation.FieldEmergencyContact,
	"tipo_sanguineo":     validation.FieldBloodType,
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Donor  models.Fields         `json:"donor"`
		Intent *models.IntentPayload `json:"intent"`
		Dados  models.Fields         `json:"dados"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	r.Donor, r.Intent = raw.Donor, raw.Intent
	if r.Donor == nil && raw.Dados != nil {
		r.Donor = make(models.Fields, len(raw.Dados))
		for key, value := range raw.Dados {
			if name, ok := legacyFieldNames[key]; ok {
				key = name
			}
			r.Donor[key] = value
		}
	}
	return nil
}

// Outcome of a single record.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// Result reports one record by its position in the file.
type Result struct {
	Index   int                 `json:"index"`
	Outcome Outcome             `json:"outcome"`
	DonorID string              `json:"donor_id,omitempty"`
	Error   string              `json:"error,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// Report summarizes a run. Results keep file order.
type Report struct {
	Results   []Result `json:"results"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Failed    int      `json:"failed"`
}

const defaultConcurrency = 4

// Importer registers records with bounded concurrency.
type Importer struct {
	registrar   Registrar
	logger      *slog.Logger
	concurrency int
	now         func() time.Time
}

type Option func(*Importer)

func WithConcurrency(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		if now != nil {
			i.now = now
		}
	}
}

func New(registrar Registrar, opts ...Option) *Importer {
	i := &Importer{
		registrar:   registrar,
		logger:      slog.Default(),
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Decode reads a JSON array of records. Numbers are kept as json.Number so
// the validation chain sees the value the file carried.
func Decode(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "import file is not a JSON array of records")
	}
	return records, nil
}

// Run registers every record. A failing record never stops the others; only
// a cancelled ctx ends the run early.
func (i *Importer) Run(ctx context.Context, records []Record) (*Report, error) {
	ctx = requestcontext.WithTime(ctx, i.now())
	results := make([]Result, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for idx, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[idx] = i.importOne(gctx, idx, rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "import cancelled")
	}

	report := &Report{Results: results}
	for _, res := range results {
		switch res.Outcome {
		case OutcomeCreated:
			report.Created++
		case OutcomeUpdated:
			report.Updated++
		case OutcomeUnchanged:
			report.Unchanged++
		case OutcomeFailed:
			report.Failed++
		}
	}
	i.logger.InfoContext(ctx, "donor import finished",
		"records", len(records),
		"created", report.Created,
		"updated", report.Updated,
		"unchanged", report.Unchanged,
		"failed", report.Failed,
	)
	return report, nil
}

// importOne registers a record, retrying once when it lost a race on the
// national id against another record of the same batch.
func (i *Importer) importOne(ctx context.Context, idx int, rec Record) Result {
	if rec.Donor == nil {
		return Result{Index: idx, Outcome: OutcomeFailed, Error: "record has no donor object"}
	}
	reg, err := i.registrar.Register(ctx, rec.Donor, rec.Intent)
	if err != nil && dErrors.HasCode(err, dErrors.CodeConflict) {
		i.logger.DebugContext(ctx, "retrying import record after conflict", "index", idx)
		reg, err = i.registrar.Register(ctx, rec.Donor, rec.Intent)
	}
	if err != nil {
		res := Result{Index: idx, Outcome: OutcomeFailed, Error: err.Error()}
		if errs, ok := validation.AsErrorMap(err); ok {
			res.Fields = errs.Messages()
			res.Error = string(dErrors.CodeValidation)
		}
		i.logger.WarnContext(ctx, "import record failed",
			"index", idx,
			"error", err,
		)
		return res
	}

	res := Result{Index: idx, DonorID: reg.Donor.ID.String()}
	switch {
	case reg.Created:
		res.Outcome = OutcomeCreated
	case reg.Updated:
		res.Outcome = OutcomeUpdated
	default:
		res.Outcome = OutcomeUnchanged
	}
	return res
}

// Summary renders a one-line count for CLI output.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d created, %d updated, %d unchanged, %d failed",
		r.Created, r.Updated, r.Unchanged, r.Failed)
}
