package intent

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

// PostgresStore persists intents and their organ links. Save must run inside a
// transaction so the intent row and its link rows change together.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByDonor(ctx context.Context, donorID id.DonorID) (*models.DonationIntent, error) {
	query := `
		SELECT i.id, i.donor_id, i.status, i.donate_now, i.created_at, i.updated_at,
			COALESCE(array_agg(o.name) FILTER (WHERE o.name IS NOT NULL), '{}')
		FROM donation_intents i
		LEFT JOIN intent_organs io ON io.intent_id = i.id
		LEFT JOIN organs o ON o.id = io.organ_id
		WHERE i.donor_id = $1
		GROUP BY i.id
	`
	var (
		intentID uuid.UUID
		owner    uuid.UUID
		status   string
		organs   []string
		intent   models.DonationIntent
	)
	err := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(donorID)).Scan(
		&intentID,
		&owner,
		&status,
		&intent.DonateNow,
		&intent.CreatedAt,
		&intent.UpdatedAt,
		pq.Array(&organs),
	)
	if err != nil {
		return nil, postgres.MapError(err, "find intent")
	}
	sort.Strings(organs)
	intent.ID = id.IntentID(intentID)
	intent.DonorID = id.DonorID(owner)
	intent.Status = models.IntentStatus(status)
	intent.Organs = organs
	return &intent, nil
}

// Save upserts the intent keyed by donor and replaces its organ set. The
// stored id and creation time are written back into intent.
func (s *PostgresStore) Save(ctx context.Context, intent *models.DonationIntent) error {
	conn := txcontext.Conn(ctx, s.db)
	upsert := `
		INSERT INTO donation_intents (id, donor_id, status, donate_now, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (donor_id) DO UPDATE SET
			status = EXCLUDED.status,
			donate_now = EXCLUDED.donate_now,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	var intentID uuid.UUID
	err := conn.QueryRowContext(ctx, upsert,
		uuid.UUID(intent.ID),
		uuid.UUID(intent.DonorID),
		string(intent.Status),
		intent.DonateNow,
		intent.CreatedAt,
		intent.UpdatedAt,
	).Scan(&intentID, &intent.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "upsert intent")
	}
	intent.ID = id.IntentID(intentID)

	if _, err := conn.ExecContext(ctx, `DELETE FROM intent_organs WHERE intent_id = $1`, intentID); err != nil {
		return postgres.MapError(err, "clear intent organs")
	}
	if len(intent.Organs) == 0 {
		return nil
	}
	link := `
		INSERT INTO intent_organs (intent_id, organ_id)
		SELECT $1, id FROM organs WHERE name = ANY($2)
	`
	if _, err := conn.ExecContext(ctx, link, intentID, pq.Array(intent.Organs)); err != nil {
		return postgres.MapError(err, "link intent organs")
	}
	return nil
}

// DeleteByDonor is a no-op when the schema cascade already removed the row.
func (s *PostgresStore) DeleteByDonor(ctx context.Context, donorID id.DonorID) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM donation_intents WHERE donor_id = $1`, uuid.UUID(donorID))
	return postgres.MapError(err, "delete intent")
}
