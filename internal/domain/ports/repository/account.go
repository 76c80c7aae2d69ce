package repository

import (
	"context"

	"sermon-subscription-billing/internal/domain/model"
)

// AccountRepository is the port for buyer accounts. Email is the unique
// lookup key on the reconciliation path.
type AccountRepository interface {
	Save(ctx context.Context, qx Tx, a *model.Account) error
	FindByEmail(ctx context.Context, qx Tx, email string) (*model.Account, error)
	FindByID(ctx context.Context, qx Tx, id string) (*model.Account, error)
	CountAccounts(ctx context.Context, qx Tx) (int, error)
}
