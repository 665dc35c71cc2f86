package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaops/internal/infrastructure/metrics"
	"vaops/internal/ports/output"
)

type txKey struct{}

// querier is the subset of pgx shared by pgxpool.Pool and pgx.Tx, so
// repository code works identically inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// queryFrom returns the transaction bound to ctx, or falls back to the pool.
func queryFrom(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

var _ output.TxManager = (*TxManager)(nil)

// TxManager runs functions inside serializable pgx transactions. Occupancy
// reads and participant writes made through the ctx passed to fn share one
// transaction, so the database re-validates every decision at commit.
type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// Serialization failures are retried with a fresh snapshot; constraint
// violations are not (they map to domain errors and surface to the caller).
const maxSerializationRetries = 3

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		// Already inside a transaction: join it.
		return fn(ctx)
	}
	var err error
	for attempt := 0; ; attempt++ {
		err = pgx.BeginTxFunc(ctx, m.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			return fn(context.WithValue(ctx, txKey{}, tx))
		})
		if err == nil || !isSerializationFailure(err) || attempt >= maxSerializationRetries {
			return err
		}
		metrics.TxRetried()
	}
}
