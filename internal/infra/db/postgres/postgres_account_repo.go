package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sermon-subscription-billing/internal/domain"
	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/repository"
)

// Ensure accountRepo implements repository.AccountRepository
var _ repository.AccountRepository = (*accountRepo)(nil)

type accountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *accountRepo {
	return &accountRepo{pool: pool}
}

const accountCols = `id, email, name, phone, password_hash, needs_password_set, active, role, created_at, updated_at`

func (r *accountRepo) Save(ctx context.Context, qx repository.Tx, a *model.Account) error {
	// Upsert keyed on id; the unique index on email is what turns a
	// concurrent double-create into ErrAlreadyExists for the loser.
	const q = `
INSERT INTO accounts (id, email, name, phone, password_hash, needs_password_set, active, role, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  email=$2, name=$3, phone=$4, password_hash=$5, needs_password_set=$6, active=$7, role=$8, updated_at=$10;`
	_, err := execSQL(ctx, r.pool, qx, q, a.ID, a.Email, a.Name, a.Phone, a.PasswordHash, a.NeedsPasswordSet, a.Active, a.Role, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			if isUniqueViolation(err) {
				return domain.ErrAlreadyExists
			}
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *accountRepo) FindByEmail(ctx context.Context, qx repository.Tx, email string) (*model.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE email=$1;`
	return r.queryOne(ctx, qx, q, email)
}

func (r *accountRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE id=$1;`
	return r.queryOne(ctx, qx, q, id)
}

func (r *accountRepo) CountAccounts(ctx context.Context, qx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, qx, `SELECT COUNT(*) FROM accounts;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *accountRepo) queryOne(ctx context.Context, qx repository.Tx, sql string, args ...any) (*model.Account, error) {
	row, err := pickRow(ctx, r.pool, qx, sql, args...)
	if err != nil {
		return nil, err
	}
	a := &model.Account{}
	var role string
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Phone, &a.PasswordHash, &a.NeedsPasswordSet, &a.Active, &role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	a.Role = model.AccountRole(role)
	return a, nil
}
