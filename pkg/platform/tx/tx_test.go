package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromWithoutTx(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
}

func TestWithTxIgnoresNil(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithTx(ctx, nil))
}

func TestConnFallsBackToDB(t *testing.T) {
	db := &sql.DB{}
	assert.Same(t, db, Conn(context.Background(), db))
}

func TestConnPrefersContextTx(t *testing.T) {
	sqlTx := &sql.Tx{}
	ctx := WithTx(context.Background(), sqlTx)
	assert.Same(t, sqlTx, Conn(ctx, &sql.DB{}))
}
