package store

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// conn is implemented by both *sql.DB and *sql.Tx.
type conn interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// QueryInterceptor wraps a database handle and logs every statement at debug level.
type QueryInterceptor struct {
	db  conn
	log *zap.SugaredLogger
}

func NewQueryInterceptor(db *sql.DB) QueryInterceptor {
	return QueryInterceptor{db: db, log: zap.S().Named("store")}
}

func (q QueryInterceptor) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer q.trace("query row", query, args, time.Now())
	return q.db.QueryRowContext(ctx, query, args...)
}

func (q QueryInterceptor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer q.trace("query", query, args, time.Now())
	return q.db.QueryContext(ctx, query, args...)
}

func (q QueryInterceptor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer q.trace("exec", query, args, time.Now())
	return q.db.ExecContext(ctx, query, args...)
}

// WithTx runs fn in a transaction. fn receives an interceptor bound to the
// transaction; the transaction is committed only if fn succeeds. Called on an
// interceptor that is already in a transaction, fn joins it.
func (q QueryInterceptor) WithTx(ctx context.Context, fn func(tx QueryInterceptor) error) error {
	db, ok := q.db.(*sql.DB)
	if !ok {
		return fn(q)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(QueryInterceptor{db: tx, log: q.log}); err != nil {
		q.log.Debugw("transaction rolled back", "error", err)
		return err
	}
	return tx.Commit()
}

func (q QueryInterceptor) trace(op, query string, args []any, start time.Time) {
	q.log.Debugw(op, "query", query, "args", args, "duration", time.Since(start))
}
