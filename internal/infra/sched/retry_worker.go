package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"sermon-subscription-billing/internal/domain/ports/repository"
	"sermon-subscription-billing/internal/usecase"
)

// RetryWorker periodically rescans webhook events left unprocessed by a
// store failure and re-runs reconciliation for them. This covers crashes
// mid-processing and transient database outages; idempotency in the
// reconciler makes a double run harmless.
type RetryWorker struct {
	engine     usecase.ReconcileUseCase
	events     repository.WebhookEventRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old an unprocessed event must be to retry
	log        *zerolog.Logger
}

func NewRetryWorker(engine usecase.ReconcileUseCase, events repository.WebhookEventRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *RetryWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &RetryWorker{engine: engine, events: events, interval: interval, staleAfter: staleAfter, log: logger}
}

func (w *RetryWorker) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *RetryWorker) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.events.ListUnprocessedOlderThan(ctx, repository.NoTX, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("retry-worker: list unprocessed failed")
		return
	}
	for _, ev := range pending {
		if err := w.engine.Reprocess(ctx, ev); err != nil {
			w.log.Warn().Err(err).Str("event_id", ev.ID).Msg("retry-worker: reprocess failed")
			continue
		}
		w.log.Info().Str("event_id", ev.ID).Str("source", ev.Source).Msg("retry-worker: event reconciled")
	}
}
