package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB defines the database operations used by core services.
// *pgxpool.Pool and pgx.Tx both satisfy this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxDB is a DB that can open transactions. *pgxpool.Pool satisfies it.
// Services that need multi-statement atomicity (the tenant update path)
// depend on TxDB; everything else takes the plain DB.
type TxDB interface {
	DB
	Begin(ctx context.Context) (pgx.Tx, error)
}
