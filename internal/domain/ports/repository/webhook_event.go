package repository

import (
	"context"
	"time"

	"sermon-subscription-billing/internal/domain/model"
)

// WebhookEventRepository is the port for the append-only inbound event log.
// Save and Finalize are the only mutation paths; Finalize touches exactly
// one row, exactly once.
type WebhookEventRepository interface {
	Save(ctx context.Context, qx Tx, e *model.WebhookEvent) error
	Finalize(ctx context.Context, qx Tx, id string, processed bool, errMsg *string) error
	FindByID(ctx context.Context, qx Tx, id string) (*model.WebhookEvent, error)
	ListRecent(ctx context.Context, qx Tx, limit, offset int) ([]*model.WebhookEvent, error)
	// ListUnprocessedOlderThan returns events still awaiting processing whose
	// receive time is before cutoff. Used by the retry worker and ops API.
	ListUnprocessedOlderThan(ctx context.Context, qx Tx, cutoff time.Time, limit int) ([]*model.WebhookEvent, error)
	// PurgeProcessedBefore deletes processed rows older than cutoff and
	// returns the number removed. The only delete path that exists.
	PurgeProcessedBefore(ctx context.Context, qx Tx, cutoff time.Time) (int64, error)
	CountUnprocessed(ctx context.Context, qx Tx) (int, error)
}
