package donor

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"sndot/internal/donor/models"
	"sndot/internal/platform/postgres"
	id "sndot/pkg/domain"
	"sndot/pkg/platform/sentinel"
	txcontext "sndot/pkg/platform/tx"
)

// PostgresStore persists donors in PostgreSQL. Calls join the transaction
// carried in ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const donorColumns = `id, national_id, name, age, sex, birth_date, birth_city, birth_state,
	profession, residence_city, residence_state, marital_status, emergency_contact,
	blood_type, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, donor *models.Donor) error {
	query := `
		INSERT INTO donors (` + donorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(donor.ID),
		donor.NationalID.String(),
		donor.Name,
		donor.Age,
		donor.Sex,
		donor.BirthDate,
		donor.BirthCity,
		donor.BirthState,
		donor.Profession,
		donor.ResidenceCity,
		donor.ResidenceState,
		donor.MaritalStatus,
		donor.EmergencyContact,
		donor.BloodType,
		donor.CreatedAt,
		donor.UpdatedAt,
	)
	return postgres.MapError(err, "insert donor")
}

func (s *PostgresStore) Update(ctx context.Context, donor *models.Donor) error {
	query := `
		UPDATE donors SET
			national_id = $2, name = $3, age = $4, sex = $5, birth_date = $6,
			birth_city = $7, birth_state = $8, profession = $9, residence_city = $10,
			residence_state = $11, marital_status = $12, emergency_contact = $13,
			blood_type = $14, updated_at = $15
		WHERE id = $1
	`
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(donor.ID),
		donor.NationalID.String(),
		donor.Name,
		donor.Age,
		donor.Sex,
		donor.BirthDate,
		donor.BirthCity,
		donor.BirthState,
		donor.Profession,
		donor.ResidenceCity,
		donor.ResidenceState,
		donor.MaritalStatus,
		donor.EmergencyContact,
		donor.BloodType,
		donor.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "update donor")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return postgres.MapError(err, "update donor")
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, donorID id.DonorID) (*models.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE id = $1`
	return s.scanOne(ctx, "find donor", query, uuid.UUID(donorID))
}

func (s *PostgresStore) FindByNationalID(ctx context.Context, nationalID id.NationalID) (*models.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE national_id = $1`
	return s.scanOne(ctx, "find donor by national id", query, nationalID.String())
}

// FindByIDForUpdate locks the row for the rest of the transaction.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, donorID id.DonorID) (*models.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE id = $1 FOR UPDATE`
	return s.scanOne(ctx, "lock donor", query, uuid.UUID(donorID))
}

// FindByNationalIDForUpdate locks the row for the rest of the transaction.
func (s *PostgresStore) FindByNationalIDForUpdate(ctx context.Context, nationalID id.NationalID) (*models.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE national_id = $1 FOR UPDATE`
	return s.scanOne(ctx, "lock donor by national id", query, nationalID.String())
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors ORDER BY created_at, id`
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, postgres.MapError(err, "list donors")
	}
	defer rows.Close()

	var donors []*models.Donor
	for rows.Next() {
		donor, err := scanDonor(rows)
		if err != nil {
			return nil, postgres.MapError(err, "scan donor")
		}
		donors = append(donors, donor)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "list donors")
	}
	return donors, nil
}

// Delete removes the donor; the intent and its organ links go with it by cascade.
func (s *PostgresStore) Delete(ctx context.Context, donorID id.DonorID) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM donors WHERE id = $1`, uuid.UUID(donorID))
	if err != nil {
		return postgres.MapError(err, "delete donor")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return postgres.MapError(err, "delete donor")
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) scanOne(ctx context.Context, op, query string, arg any) (*models.Donor, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, arg)
	donor, err := scanDonor(row)
	if err != nil {
		return nil, postgres.MapError(err, op)
	}
	return donor, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDonor(row scanner) (*models.Donor, error) {
	var (
		donorID    uuid.UUID
		nationalID string
		birthDate  time.Time
		donor      models.Donor
	)
	err := row.Scan(
		&donorID,
		&nationalID,
		&donor.Name,
		&donor.Age,
		&donor.Sex,
		&birthDate,
		&donor.BirthCity,
		&donor.BirthState,
		&donor.Profession,
		&donor.ResidenceCity,
		&donor.ResidenceState,
		&donor.MaritalStatus,
		&donor.EmergencyContact,
		&donor.BloodType,
		&donor.CreatedAt,
		&donor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	donor.ID = id.DonorID(donorID)
	donor.NationalID = id.NationalID(nationalID)
	donor.BirthDate = time.Date(birthDate.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, time.UTC)
	return &donor, nil
}
