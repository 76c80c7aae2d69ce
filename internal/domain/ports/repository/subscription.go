package repository

import (
	"context"
	"time"

	"sermon-subscription-billing/internal/domain/model"
)

// SubscriptionRepository is the port for subscription state.
type SubscriptionRepository interface {
	Save(ctx context.Context, qx Tx, s *model.Subscription) error
	FindActiveByAccount(ctx context.Context, qx Tx, accountID string) (*model.Subscription, error)
	// CancelActiveByAccount transitions every active subscription of the
	// account to cancelled with the given timestamp and returns how many
	// rows changed. Non-active rows are untouched.
	CancelActiveByAccount(ctx context.Context, qx Tx, accountID string, at time.Time) (int64, error)
	ListByAccount(ctx context.Context, qx Tx, accountID string) ([]*model.Subscription, error)
	CountByStatus(ctx context.Context, qx Tx) (map[model.SubscriptionStatus]int, error)
	// LockAccount serializes subscription writes for one account for the
	// duration of the surrounding transaction. Must be called with a live
	// transaction handle.
	LockAccount(ctx context.Context, qx Tx, accountID string) error
}
