// File: internal/usecase/reconcile_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"sermon-subscription-billing/internal/domain"
	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/repository"
	"sermon-subscription-billing/internal/infra/adapters/provider"
	"sermon-subscription-billing/internal/infra/logging"
	"sermon-subscription-billing/internal/infra/metrics"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// ReconcileUseCase is the "process payment event" contract exposed to the
// transport layer. ProcessWebhook returns an error only for storage-layer
// failures; normalization failures and business no-ops are absorbed and
// acknowledged, so providers never retry payloads that cannot improve.
type ReconcileUseCase interface {
	ProcessWebhook(ctx context.Context, source, eventType string, payload []byte) (*model.WebhookEvent, error)
	// Reprocess re-runs reconciliation for an already recorded event that
	// was left unprocessed by an earlier store failure.
	Reprocess(ctx context.Context, ev *model.WebhookEvent) error
}

// DuplicateMarker is a best-effort recent-delivery memory keyed by
// provider and external transaction id. A hit is observability only: the
// store's own constraints stay authoritative for idempotency.
type DuplicateMarker interface {
	MarkSeen(ctx context.Context, source, transactionID string) (bool, error)
}

type reconcileUC struct {
	events      repository.WebhookEventRepository
	subs        repository.SubscriptionRepository
	plans       repository.PlanRepository
	accounts    AccountUseCase
	normalizers *provider.Registry
	tm          repository.TransactionManager
	dedup       DuplicateMarker // optional
	opTimeout   time.Duration
	log         *zerolog.Logger
}

func NewReconcileUseCase(
	events repository.WebhookEventRepository,
	subs repository.SubscriptionRepository,
	plans repository.PlanRepository,
	accounts AccountUseCase,
	normalizers *provider.Registry,
	tm repository.TransactionManager,
	dedup DuplicateMarker,
	opTimeout time.Duration,
	logger *zerolog.Logger,
) *reconcileUC {
	if opTimeout <= 0 {
		opTimeout = 10 * time.Second
	}
	return &reconcileUC{
		events:      events,
		subs:        subs,
		plans:       plans,
		accounts:    accounts,
		normalizers: normalizers,
		tm:          tm,
		dedup:       dedup,
		opTimeout:   opTimeout,
		log:         logger,
	}
}

func (u *reconcileUC) ProcessWebhook(ctx context.Context, source, eventType string, payload []byte) (*model.WebhookEvent, error) {
	defer logging.TraceDuration(u.log, "ReconcileUC.ProcessWebhook")()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, u.opTimeout)
	defer cancel()

	metrics.IncWebhookReceived(source)

	ev, err := model.NewWebhookEvent(source, eventType, payload)
	if err != nil {
		return nil, err
	}
	// The audit write comes before any interpretation of the payload. If
	// it fails nothing else is attempted: no log row, no state change.
	if err := u.events.Save(ctx, repository.NoTX, ev); err != nil {
		metrics.IncWebhookResult(source, "store_error")
		return nil, fmt.Errorf("record webhook event: %w", err)
	}

	err = u.process(logging.WithEventID(ctx, ev.ID), ev)
	metrics.ObserveWebhookProcessing(source, time.Since(start).Seconds())
	return ev, err
}

func (u *reconcileUC) Reprocess(ctx context.Context, ev *model.WebhookEvent) error {
	defer logging.TraceDuration(u.log, "ReconcileUC.Reprocess")()
	ctx, cancel := context.WithTimeout(ctx, u.opTimeout)
	defer cancel()
	return u.process(logging.WithEventID(ctx, ev.ID), ev)
}

// process runs normalization and reconciliation for a recorded event and
// finalizes its row. An error return means the row is still unprocessed.
func (u *reconcileUC) process(ctx context.Context, ev *model.WebhookEvent) error {
	log := logging.With(ctx, u.log)

	norm, ok := u.normalizers.ForSource(ev.Source)
	if !ok {
		// Recorded but unusable; same policy as a bad payload.
		return u.finalizeWithError(ctx, ev, domain.ErrUnknownProvider.Error())
	}

	pe, err := norm.Normalize(ev.Payload)
	if err != nil {
		// Expected outcome, not a failure: the payload is unrecoverably
		// unusable and a retry cannot improve it.
		log.Warn().Str("source", ev.Source).Str("reason", err.Error()).Msg("webhook payload not normalizable")
		return u.finalizeWithError(ctx, ev, err.Error())
	}

	if u.dedup != nil && pe.TransactionID != "" {
		if seen, derr := u.dedup.MarkSeen(ctx, pe.Source, pe.TransactionID); derr == nil && seen {
			metrics.IncWebhookDuplicate(pe.Source)
			log.Info().Str("transaction_id", pe.TransactionID).Msg("duplicate delivery detected")
		}
	}

	account, err := u.accounts.ResolveOrCreate(ctx, pe)
	if err != nil {
		// The event row stays unprocessed on purpose: visible for manual
		// retry rather than silently lost.
		metrics.IncWebhookResult(ev.Source, "store_error")
		return fmt.Errorf("resolve account: %w", err)
	}

	if err := u.applyStatus(ctx, account, pe); err != nil {
		metrics.IncWebhookResult(ev.Source, "store_error")
		return fmt.Errorf("apply subscription state: %w", err)
	}

	if err := u.events.Finalize(ctx, repository.NoTX, ev.ID, true, nil); err != nil {
		metrics.IncWebhookResult(ev.Source, "store_error")
		return fmt.Errorf("finalize webhook event: %w", err)
	}
	ev.MarkProcessed("")
	metrics.IncWebhookResult(ev.Source, "processed")
	log.Info().
		Str("status", string(pe.Status)).
		Str("email", logging.RedactEmail(pe.Email, false)).
		Msg("webhook reconciled")
	return nil
}

// finalizeWithError marks the event processed with an explanatory error.
// No account or subscription state was touched.
func (u *reconcileUC) finalizeWithError(ctx context.Context, ev *model.WebhookEvent, msg string) error {
	if err := u.events.Finalize(ctx, repository.NoTX, ev.ID, true, &msg); err != nil {
		metrics.IncWebhookResult(ev.Source, "store_error")
		return fmt.Errorf("finalize webhook event: %w", err)
	}
	ev.MarkProcessed(msg)
	metrics.IncWebhookResult(ev.Source, "normalization_error")
	return nil
}

// applyStatus drives the two-state subscription machine for the account.
func (u *reconcileUC) applyStatus(ctx context.Context, account *model.Account, pe *model.PurchaseEvent) error {
	switch {
	case pe.Status == model.StatusApproved:
		return u.activate(ctx, account, pe)
	case pe.Status.Cancels():
		return u.cancelAll(ctx, account)
	default:
		// Unrecognized provider vocabulary: fully logged, no state change.
		metrics.IncSubscriptionTransition("noop")
		return nil
	}
}

func (u *reconcileUC) activate(ctx context.Context, account *model.Account, pe *model.PurchaseEvent) error {
	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, qx repository.Tx) error {
		// Per-account advisory lock makes find-active-then-create atomic
		// against a concurrent duplicate delivery.
		if err := u.subs.LockAccount(ctx, qx, account.ID); err != nil {
			return err
		}

		existing, err := u.subs.FindActiveByAccount(ctx, qx, account.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil {
			// Retried or duplicate delivery; the active row stands.
			metrics.IncSubscriptionTransition("noop")
			return nil
		}

		plan, err := u.selectPlan(ctx, qx, pe)
		if err != nil {
			return err
		}
		sub, err := model.NewSubscription(account.ID, plan, pe.TransactionID)
		if err != nil {
			return err
		}
		if err := u.subs.Save(ctx, qx, sub); err != nil {
			return err
		}
		metrics.IncSubscriptionTransition("created")
		return nil
	})
}

func (u *reconcileUC) cancelAll(ctx context.Context, account *model.Account) error {
	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, qx repository.Tx) error {
		n, err := u.subs.CancelActiveByAccount(ctx, qx, account.ID, time.Now())
		if err != nil {
			return err
		}
		if n == 0 {
			metrics.IncSubscriptionTransition("noop")
			return nil
		}
		metrics.IncSubscriptionTransition("cancelled")
		return nil
	})
}

func (u *reconcileUC) selectPlan(ctx context.Context, qx repository.Tx, pe *model.PurchaseEvent) (*model.Plan, error) {
	if pe.PlanID != "" {
		return u.plans.FindByID(ctx, qx, pe.PlanID)
	}
	plan, err := u.plans.FindFirstActive(ctx, qx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoActivePlan
	}
	return plan, err
}
