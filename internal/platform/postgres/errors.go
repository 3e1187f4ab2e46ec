package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"sndot/pkg/platform/sentinel"
)

// SQLSTATE codes the stores care about.
const (
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// MapError wraps driver errors with the matching sentinel so services can
// translate them without importing the driver. op names the failed operation.
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case uniqueViolation, serializationFailure, deadlockDetected:
			return fmt.Errorf("%s: %w: %s", op, sentinel.ErrConflict, pqErr.Constraint)
		case foreignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, sentinel.ErrNotFound, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
