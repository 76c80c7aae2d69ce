package postgres

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sermon-subscription-billing/internal/domain"
	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionCols = `id, account_id, plan_id, status, started_at, cancelled_at, transaction_id, created_at`

func (r *subscriptionRepo) Save(ctx context.Context, qx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (id, account_id, plan_id, status, started_at, cancelled_at, transaction_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  status=$4, cancelled_at=$6;`
	_, err := execSQL(ctx, r.pool, qx, q, s.ID, s.AccountID, s.PlanID, s.Status, s.StartedAt, s.CancelledAt, s.TransactionID, s.CreatedAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			if isUniqueViolation(err) {
				// Partial unique index: one active subscription per account.
				return domain.ErrAlreadyExists
			}
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *subscriptionRepo) FindActiveByAccount(ctx context.Context, qx repository.Tx, accountID string) (*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionCols + `
  FROM subscriptions
 WHERE account_id=$1 AND status='active'
 ORDER BY created_at DESC
 LIMIT 1;`
	return r.queryOne(ctx, qx, q, accountID)
}

func (r *subscriptionRepo) CancelActiveByAccount(ctx context.Context, qx repository.Tx, accountID string, at time.Time) (int64, error) {
	const q = `
UPDATE subscriptions
   SET status='cancelled', cancelled_at=$2
 WHERE account_id=$1 AND status='active';`
	tag, err := execSQL(ctx, r.pool, qx, q, accountID, at)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return tag.RowsAffected(), nil
}

func (r *subscriptionRepo) ListByAccount(ctx context.Context, qx repository.Tx, accountID string) ([]*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionCols + `
  FROM subscriptions
 WHERE account_id=$1
 ORDER BY created_at ASC;`
	rows, err := queryRows(ctx, r.pool, qx, q, accountID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *subscriptionRepo) CountByStatus(ctx context.Context, qx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM subscriptions GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, qx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	counts := make(map[model.SubscriptionStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		counts[model.SubscriptionStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return counts, nil
}

// LockAccount takes a per-account advisory xact lock, serializing
// check-then-act sequences for that account until the surrounding
// transaction ends. Requires a live transaction handle in qx.
func (r *subscriptionRepo) LockAccount(ctx context.Context, qx repository.Tx, accountID string) error {
	if _, ok := qx.(pgx.Tx); !ok {
		return domain.ErrInvalidExecContext
	}
	_, err := execSQL(ctx, r.pool, qx, `SELECT pg_advisory_xact_lock($1);`, hashToInt64(accountID))
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func hashToInt64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64() & ((1 << 63) - 1))
}

func (r *subscriptionRepo) queryOne(ctx context.Context, qx repository.Tx, sql string, args ...any) (*model.Subscription, error) {
	row, err := pickRow(ctx, r.pool, qx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	var status string
	if err := row.Scan(&s.ID, &s.AccountID, &s.PlanID, &status, &s.StartedAt, &s.CancelledAt, &s.TransactionID, &s.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	s.Status = model.SubscriptionStatus(status)
	return s, nil
}
