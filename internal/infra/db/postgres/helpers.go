package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sermon-subscription-billing/internal/domain/ports/repository"
)

// pickRow runs a single-row query through whichever executor qx resolves to.
func pickRow(ctx context.Context, pool *pgxpool.Pool, qx repository.Tx, sql string, args ...any) (pgx.Row, error) {
	ex, err := getExecutor(pool, qx)
	if err != nil {
		return nil, err
	}
	return ex.QueryRow(ctx, sql, args...), nil
}

// execSQL runs a statement through whichever executor qx resolves to.
func execSQL(ctx context.Context, pool *pgxpool.Pool, qx repository.Tx, sql string, args ...any) (pgconn.CommandTag, error) {
	ex, err := getExecutor(pool, qx)
	if err != nil {
		return nil, err
	}
	return ex.Exec(ctx, sql, args...)
}

// queryRows runs a multi-row query through whichever executor qx resolves to.
func queryRows(ctx context.Context, pool *pgxpool.Pool, qx repository.Tx, sql string, args ...any) (pgx.Rows, error) {
	ex, err := getExecutor(pool, qx)
	if err != nil {
		return nil, err
	}
	return ex.Query(ctx, sql, args...)
}

// isUniqueViolation reports a 23505 from the store.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
