package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sermon-subscription-billing/internal/domain"
	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/repository"
)

// Ensure planRepo implements repository.PlanRepository
var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

const planCols = `id, name, price_cents, billing_interval, active, created_at`

func (r *planRepo) Save(ctx context.Context, qx repository.Tx, p *model.Plan) error {
	const q = `
INSERT INTO plans (id, name, price_cents, billing_interval, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  name=$2, price_cents=$3, billing_interval=$4, active=$5;`
	_, err := execSQL(ctx, r.pool, qx, q, p.ID, p.Name, p.PriceCents, p.Interval, p.Active, p.CreatedAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Plan, error) {
	const q = `SELECT ` + planCols + ` FROM plans WHERE id=$1;`
	return r.queryOne(ctx, qx, q, id)
}

func (r *planRepo) FindFirstActive(ctx context.Context, qx repository.Tx) (*model.Plan, error) {
	const q = `
SELECT ` + planCols + `
  FROM plans
 WHERE active=true
 ORDER BY created_at ASC
 LIMIT 1;`
	return r.queryOne(ctx, qx, q)
}

func (r *planRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.Plan, error) {
	const q = `SELECT ` + planCols + ` FROM plans ORDER BY created_at ASC;`
	rows, err := queryRows(ctx, r.pool, qx, q)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	var out []*model.Plan
	for rows.Next() {
		p := &model.Plan{}
		var interval string
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &interval, &p.Active, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		p.Interval = model.BillingInterval(interval)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *planRepo) queryOne(ctx context.Context, qx repository.Tx, sql string, args ...any) (*model.Plan, error) {
	row, err := pickRow(ctx, r.pool, qx, sql, args...)
	if err != nil {
		return nil, err
	}
	p := &model.Plan{}
	var interval string
	if err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &interval, &p.Active, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	p.Interval = model.BillingInterval(interval)
	return p, nil
}
