//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/repository"
	"sermon-subscription-billing/internal/usecase"
)

func seedEvent(t *testing.T, repo *MockEventRepo, source string, processed bool, age time.Duration) *model.WebhookEvent {
	t.Helper()
	ev, err := model.NewWebhookEvent(source, "", []byte(`{}`))
	if err != nil {
		t.Fatalf("build event: %v", err)
	}
	ev.CreatedAt = time.Now().Add(-age)
	ev.Processed = processed
	if err := repo.Save(context.Background(), repository.NoTX, ev); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return ev
}

func TestEventUC(t *testing.T) {
	ctx := context.Background()

	t.Run("list recent pages newest first", func(t *testing.T) {
		repo := NewMockEventRepo()
		uc := usecase.NewEventUseCase(repo, newTestLogger())

		old := seedEvent(t, repo, "hotmart", true, time.Hour)
		newest := seedEvent(t, repo, "kirvano", true, 0)

		events, err := uc.ListRecent(ctx, 1, 0)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if len(events) != 1 || events[0].ID != newest.ID {
			t.Fatalf("expected newest event first, got %v", events)
		}

		events, err = uc.ListRecent(ctx, 1, 1)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if len(events) != 1 || events[0].ID != old.ID {
			t.Fatalf("expected older event on the second page, got %v", events)
		}
	})

	t.Run("list unprocessed respects the age filter", func(t *testing.T) {
		repo := NewMockEventRepo()
		uc := usecase.NewEventUseCase(repo, newTestLogger())

		stale := seedEvent(t, repo, "hotmart", false, time.Hour)
		seedEvent(t, repo, "hotmart", false, 0)           // too fresh
		seedEvent(t, repo, "hotmart", true, 2*time.Hour)  // processed

		events, err := uc.ListUnprocessed(ctx, 30*time.Minute, 10)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if len(events) != 1 || events[0].ID != stale.ID {
			t.Fatalf("expected only the stale unprocessed event, got %v", events)
		}
	})

	t.Run("purge removes only processed events past retention", func(t *testing.T) {
		repo := NewMockEventRepo()
		uc := usecase.NewEventUseCase(repo, newTestLogger())

		seedEvent(t, repo, "hotmart", true, 48*time.Hour)  // purged
		seedEvent(t, repo, "hotmart", false, 48*time.Hour) // unprocessed, kept
		seedEvent(t, repo, "hotmart", true, time.Hour)     // inside retention, kept

		n, err := uc.Purge(ctx, 24*time.Hour)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 deleted, got %d", n)
		}
		if left, _ := uc.CountUnprocessed(ctx); left != 1 {
			t.Errorf("unprocessed count: got %d", left)
		}
	})
}

func TestStatsUC_Totals(t *testing.T) {
	ctx := context.Background()

	accounts := NewMockAccountRepo()
	subs := NewMockSubRepo()
	events := NewMockEventRepo()
	uc := usecase.NewStatsUseCase(accounts, subs, events, newTestLogger())

	a, err := model.NewAccount("a@x.com", "", "")
	if err != nil {
		t.Fatalf("build account: %v", err)
	}
	if err := accounts.Save(ctx, repository.NoTX, a); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	plan, _ := model.NewPlan("Monthly", 1990, model.IntervalMonthly)
	sub, _ := model.NewSubscription(a.ID, plan, "")
	if err := subs.Save(ctx, repository.NoTX, sub); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
	seedEvent(t, events, "hotmart", false, 0)

	totalAccounts, byStatus, unprocessed, err := uc.Totals(ctx)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if totalAccounts != 1 {
		t.Errorf("accounts: got %d", totalAccounts)
	}
	if byStatus[model.SubscriptionStatusActive] != 1 {
		t.Errorf("active subscriptions: got %d", byStatus[model.SubscriptionStatusActive])
	}
	if unprocessed != 1 {
		t.Errorf("unprocessed events: got %d", unprocessed)
	}
}
