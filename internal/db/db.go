package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"fintrack/internal/logging"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrRetryLimit = errors.New("transaction retry limit exceeded")

type TxRunner interface {
	WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
}

// RetryPolicy bounds how often a transaction that lost a serialization race
// is replayed. The wait before attempt n is n*n*Base plus up to Jitter.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Jitter   time.Duration
}

var DefaultRetry = RetryPolicy{Attempts: 5, Base: 20 * time.Millisecond, Jitter: 10 * time.Millisecond}

func (p RetryPolicy) wait(ctx context.Context, attempt int) error {
	delay := time.Duration(attempt*attempt) * p.Base
	if p.Jitter > 0 {
		delay += rand.N(p.Jitter)
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type SQLXTxRunner struct {
	db     *sqlx.DB
	retry  RetryPolicy
	logger *slog.Logger
}

func NewTxRunner(db *sqlx.DB) SQLXTxRunner {
	return SQLXTxRunner{db: db, retry: DefaultRetry, logger: logging.Component(nil, "db")}
}

func (r SQLXTxRunner) WithRetry(policy RetryPolicy) SQLXTxRunner {
	r.retry = policy
	return r
}

// WithTx runs fn in a serializable transaction. Every ledger write goes
// through here so a transfer or a template materialization commits whole or
// not at all.
func (r SQLXTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	attempts := max(r.retry.Attempts, 1)
	for attempt := 1; ; attempt++ {
		err := runOnce(ctx, r.db, fn)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		if attempt >= attempts {
			return fmt.Errorf("%w: %v", ErrRetryLimit, err)
		}
		r.logger.DebugContext(ctx, "retrying transaction", "attempt", attempt, logging.FieldError, err)
		if err := r.retry.wait(ctx, attempt); err != nil {
			return err
		}
	}
}

func runOnce(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "40001", "40P01":
		return true
	}
	return false
}

// Pool sizes the connection pool. Budget progress fans out a few queries per
// request, so MaxOpenConns stays well above that fan-out.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

var DefaultPool = Pool{
	MaxOpenConns:    30,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
	ConnMaxIdleTime: 5 * time.Minute,
}

func Connect(databaseURL string) (*sqlx.DB, error) {
	return ConnectPool(databaseURL, DefaultPool)
}

func ConnectPool(databaseURL string, pool Pool) (*sqlx.DB, error) {
	database, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	database.SetMaxOpenConns(pool.MaxOpenConns)
	database.SetMaxIdleConns(pool.MaxIdleConns)
	database.SetConnMaxLifetime(pool.ConnMaxLifetime)
	database.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	return database, nil
}
