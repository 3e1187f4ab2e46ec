package organ

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"sndot/internal/donor/models"
	"sndot/internal/platform/postgres"
	id "sndot/pkg/domain"
	txcontext "sndot/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, organ *models.Organ) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO organs (id, name) VALUES ($1, $2)`,
		uuid.UUID(organ.ID), organ.Name,
	)
	return postgres.MapError(err, "insert organ")
}

func (s *PostgresStore) FindByNames(ctx context.Context, names []string) ([]*models.Organ, error) {
	return s.query(ctx, "find organs", `SELECT id, name FROM organs WHERE name = ANY($1)`, pq.Array(names))
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Organ, error) {
	return s.query(ctx, "list organs", `SELECT id, name FROM organs`)
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]*models.Organ, error) {
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, op)
	}
	defer rows.Close()

	out := []*models.Organ{}
	for rows.Next() {
		var (
			organID uuid.UUID
			organ   models.Organ
		)
		if err := rows.Scan(&organID, &organ.Name); err != nil {
			return nil, postgres.MapError(err, op)
		}
		organ.ID = id.OrganID(organID)
		out = append(out, &organ)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, op)
	}
	// Byte order, matching the in-memory store regardless of database collation.
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
