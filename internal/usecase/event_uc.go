// File: internal/usecase/event_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/repository"
	"sermon-subscription-billing/internal/infra/logging"
)

// Compile-time check
var _ EventUseCase = (*eventUC)(nil)

// EventUseCase exposes the audit log to ops tooling.
type EventUseCase interface {
	ListRecent(ctx context.Context, limit, offset int) ([]*model.WebhookEvent, error)
	ListUnprocessed(ctx context.Context, olderThan time.Duration, limit int) ([]*model.WebhookEvent, error)
	// Purge removes processed events older than the retention window and
	// returns the number deleted. The only sanctioned delete path.
	Purge(ctx context.Context, retention time.Duration) (int64, error)
	CountUnprocessed(ctx context.Context) (int, error)
}

type eventUC struct {
	events repository.WebhookEventRepository
	log    *zerolog.Logger
}

func NewEventUseCase(events repository.WebhookEventRepository, logger *zerolog.Logger) *eventUC {
	return &eventUC{events: events, log: logger}
}

func (u *eventUC) ListRecent(ctx context.Context, limit, offset int) ([]*model.WebhookEvent, error) {
	defer logging.TraceDuration(u.log, "EventUC.ListRecent")()
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return u.events.ListRecent(ctx, repository.NoTX, limit, offset)
}

func (u *eventUC) ListUnprocessed(ctx context.Context, olderThan time.Duration, limit int) ([]*model.WebhookEvent, error) {
	defer logging.TraceDuration(u.log, "EventUC.ListUnprocessed")()
	if limit <= 0 {
		limit = 200
	}
	cutoff := time.Now().Add(-olderThan)
	return u.events.ListUnprocessedOlderThan(ctx, repository.NoTX, cutoff, limit)
}

func (u *eventUC) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	defer logging.TraceDuration(u.log, "EventUC.Purge")()
	cutoff := time.Now().Add(-retention)
	n, err := u.events.PurgeProcessedBefore(ctx, repository.NoTX, cutoff)
	if err != nil {
		return 0, err
	}
	u.log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("purged processed webhook events")
	return n, nil
}

func (u *eventUC) CountUnprocessed(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "EventUC.CountUnprocessed")()
	return u.events.CountUnprocessed(ctx, repository.NoTX)
}
