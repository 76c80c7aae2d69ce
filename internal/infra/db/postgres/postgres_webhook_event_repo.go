package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sermon-subscription-billing/internal/domain"
	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/repository"
)

// Ensure webhookEventRepo implements repository.WebhookEventRepository
var _ repository.WebhookEventRepository = (*webhookEventRepo)(nil)

type webhookEventRepo struct {
	pool *pgxpool.Pool
}

func NewWebhookEventRepo(pool *pgxpool.Pool) *webhookEventRepo {
	return &webhookEventRepo{pool: pool}
}

const webhookEventCols = `id, source, event_type, payload, processed, error, created_at`

func (r *webhookEventRepo) Save(ctx context.Context, qx repository.Tx, e *model.WebhookEvent) error {
	const q = `
INSERT INTO webhook_events (id, source, event_type, payload, processed, error, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err := execSQL(ctx, r.pool, qx, q, e.ID, e.Source, e.EventType, e.Payload, e.Processed, e.Error, e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *webhookEventRepo) Finalize(ctx context.Context, qx repository.Tx, id string, processed bool, errMsg *string) error {
	const q = `UPDATE webhook_events SET processed=$2, error=$3 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, qx, q, id, processed, errMsg)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *webhookEventRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.WebhookEvent, error) {
	const q = `SELECT ` + webhookEventCols + ` FROM webhook_events WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	return scanWebhookEvent(row)
}

func (r *webhookEventRepo) ListRecent(ctx context.Context, qx repository.Tx, limit, offset int) ([]*model.WebhookEvent, error) {
	const q = `
SELECT ` + webhookEventCols + `
  FROM webhook_events
 ORDER BY id DESC
 LIMIT $1 OFFSET $2;`
	return r.queryMany(ctx, qx, q, limit, offset)
}

func (r *webhookEventRepo) ListUnprocessedOlderThan(ctx context.Context, qx repository.Tx, cutoff time.Time, limit int) ([]*model.WebhookEvent, error) {
	const q = `
SELECT ` + webhookEventCols + `
  FROM webhook_events
 WHERE processed=false AND created_at < $1
 ORDER BY id ASC
 LIMIT $2;`
	return r.queryMany(ctx, qx, q, cutoff, limit)
}

func (r *webhookEventRepo) PurgeProcessedBefore(ctx context.Context, qx repository.Tx, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM webhook_events WHERE processed=true AND created_at < $1;`
	tag, err := execSQL(ctx, r.pool, qx, q, cutoff)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return tag.RowsAffected(), nil
}

func (r *webhookEventRepo) CountUnprocessed(ctx context.Context, qx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, qx, `SELECT COUNT(*) FROM webhook_events WHERE processed=false;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *webhookEventRepo) queryMany(ctx context.Context, qx repository.Tx, sql string, args ...any) ([]*model.WebhookEvent, error) {
	rows, err := queryRows(ctx, r.pool, qx, sql, args...)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	var out []*model.WebhookEvent
	for rows.Next() {
		e, err := scanWebhookEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanWebhookEvent(row pgx.Row) (*model.WebhookEvent, error) {
	e := &model.WebhookEvent{}
	if err := row.Scan(&e.ID, &e.Source, &e.EventType, &e.Payload, &e.Processed, &e.Error, &e.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return e, nil
}
