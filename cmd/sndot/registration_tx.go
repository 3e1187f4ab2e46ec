package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "sndot/pkg/domain-errors"
	txcontext "sndot/pkg/platform/tx"
)

const defaultRegistrationTxTimeout = 5 * time.Second

// registrationPostgresTx runs the registrar's transaction on a *sql.Tx carried
// in the context; every PostgreSQL store picks it up through txcontext.Conn.
type registrationPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newRegistrationPostgresTx(db *sql.DB, timeout time.Duration) *registrationPostgresTx {
	return &registrationPostgresTx{db: db, timeout: timeout}
}

func (t *registrationPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultRegistrationTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
