package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"sndot/pkg/platform/sentinel"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: sql.ErrNoRows, want: sentinel.ErrNotFound},
		{name: "unique violation", err: &pq.Error{Code: "23505", Constraint: "donors_national_id_key"}, want: sentinel.ErrConflict},
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: sentinel.ErrConflict},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, want: sentinel.ErrConflict},
		{name: "foreign key", err: &pq.Error{Code: "23503"}, want: sentinel.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, MapError(tt.err, "op"), tt.want)
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil, "op"))
	})

	t.Run("other errors keep their identity", func(t *testing.T) {
		boom := errors.New("connection reset")
		err := MapError(boom, "insert donor")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, sentinel.ErrConflict)
		assert.Contains(t, err.Error(), "insert donor")
	})
}
