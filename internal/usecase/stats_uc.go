// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/repository"
	"sermon-subscription-billing/internal/infra/logging"
	"sermon-subscription-billing/internal/infra/metrics"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase aggregates counters for the ops API and metrics refresh.
type StatsUseCase interface {
	Totals(ctx context.Context) (accounts int, subsByStatus map[model.SubscriptionStatus]int, unprocessedEvents int, err error)
}

type statsUC struct {
	accounts repository.AccountRepository
	subs     repository.SubscriptionRepository
	events   repository.WebhookEventRepository
	log      *zerolog.Logger
}

func NewStatsUseCase(accounts repository.AccountRepository, subs repository.SubscriptionRepository, events repository.WebhookEventRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{accounts: accounts, subs: subs, events: events, log: logger}
}

func (u *statsUC) Totals(ctx context.Context) (int, map[model.SubscriptionStatus]int, int, error) {
	defer logging.TraceDuration(u.log, "StatsUC.Totals")()

	accounts, err := u.accounts.CountAccounts(ctx, repository.NoTX)
	if err != nil {
		return 0, nil, 0, err
	}
	byStatus, err := u.subs.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return 0, nil, 0, err
	}
	unprocessed, err := u.events.CountUnprocessed(ctx, repository.NoTX)
	if err != nil {
		return 0, nil, 0, err
	}
	metrics.SetSubscriptionsTotal(byStatus)
	return accounts, byStatus, unprocessed, nil
}
