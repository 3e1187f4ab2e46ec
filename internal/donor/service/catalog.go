package service

import (
	"context"
	"errors"

	"sndot/internal/donor/models"
	id "sndot/pkg/domain"
	audit "sndot/pkg/platform/audit"
	"sndot/pkg/platform/sentinel"
	"sndot/pkg/requestcontext"
)

// SeedResult reports one catalog name.
type SeedResult struct {
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

// SeedOrgans inserts the fixed organ catalog. Running it again reports every
// name as already present.
func (r *Registrar) SeedOrgans(ctx context.Context) ([]SeedResult, error) {
	existing, err := r.organs.FindByNames(ctx, models.OrganCatalog)
	if err != nil {
		return nil, translate(err, "failed to read organ catalog")
	}
	present := make(map[string]struct{}, len(existing))
	for _, o := range existing {
		present[o.Name] = struct{}{}
	}

	results := make([]SeedResult, 0, len(models.OrganCatalog))
	for _, name := range models.OrganCatalog {
		if _, ok := present[name]; ok {
			results = append(results, SeedResult{Name: name})
			continue
		}
		err := r.organs.Create(ctx, &models.Organ{ID: id.NewOrganID(), Name: name})
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			// another seeder got there first
			results = append(results, SeedResult{Name: name})
		case err != nil:
			return results, translate(err, "failed to seed organ "+name)
		default:
			r.metrics.IncOrgansSeeded()
			results = append(results, SeedResult{Name: name, Created: true})
		}
	}

	created := 0
	for _, res := range results {
		if res.Created {
			created++
		}
	}
	if created > 0 {
		r.emit(ctx, audit.Event{
			Action: string(audit.EventOrganSeeded),
			Reason: "catalog seeded",
		})
	}
	r.logger.InfoContext(ctx, "organ catalog seeded",
		"created", created,
		"present", len(results)-created,
		"request_id", requestcontext.RequestID(ctx),
	)
	return results, nil
}

// ListOrgans returns the catalog sorted by name.
func (r *Registrar) ListOrgans(ctx context.Context) ([]*models.Organ, error) {
	organs, err := r.organs.List(ctx)
	if err != nil {
		return nil, translate(err, "failed to list organs")
	}
	return organs, nil
}
