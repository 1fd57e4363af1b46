package store

import (
	"context"
	"database/sql"
	"strconv"
)

// Execer writes inside the caller's transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Getter reads a single row, usually with FOR UPDATE inside a transaction.
type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// DB is the pool-level handle each store is built on.
type DB interface {
	Execer
	Getter
	Selecter
}

// Tx is what services hand to stores while a transaction is open. A
// *sqlx.Tx satisfies it.
type Tx interface {
	Execer
	Getter
}

// placeholder returns the Postgres bind parameter for position n.
func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
