package assignment

import (
	"context"
	"database/sql"
	"time"

	"obligo/internal/publishing/publisher"
	dErrors "obligo/pkg/domain-errors"
	txcontext "obligo/pkg/platform/tx"
)

const defaultPublishTxTimeout = 30 * time.Second

// PostgresTx runs a publish inside one database transaction. The transaction
// rides on ctx, so the assignment store and the audit outbox both write
// through it.
type PostgresTx struct {
	db      *sql.DB
	store   *PostgresStore
	timeout time.Duration
}

func NewPostgresTx(db *sql.DB, store *PostgresStore, timeout time.Duration) *PostgresTx {
	if timeout <= 0 {
		timeout = defaultPublishTxTimeout
	}
	return &PostgresTx{db: db, store: store, timeout: timeout}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store publisher.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx), t.store); err != nil {
		return err
	}

	return tx.Commit()
}
