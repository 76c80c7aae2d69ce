//go:build !integration

package usecase_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"sermon-subscription-billing/internal/domain"
	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/repository"
	"sermon-subscription-billing/internal/usecase"
)

func newAccountUC(repo *MockAccountRepo) usecase.AccountUseCase {
	return usecase.NewAccountUseCase(repo, NewMockTxManager(), newTestLogger())
}

func TestAccountUC_ResolveOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an account with sensible defaults", func(t *testing.T) {
		repo := NewMockAccountRepo()
		uc := newAccountUC(repo)

		account, err := uc.ResolveOrCreate(ctx, &model.PurchaseEvent{Email: "Jane.Doe@X.com", Phone: "+5511999"})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if account.Email != "jane.doe@x.com" {
			t.Errorf("expected lowercased email, got %q", account.Email)
		}
		if account.Name != "jane.doe" {
			t.Errorf("expected name derived from email, got %q", account.Name)
		}
		if account.Phone != "+5511999" {
			t.Errorf("expected phone carried over, got %q", account.Phone)
		}
		if !account.NeedsPasswordSet || account.PasswordHash != nil {
			t.Error("new account must await first-access password setup")
		}
		if !account.Active {
			t.Error("new account must be active")
		}
	})

	t.Run("is idempotent per email", func(t *testing.T) {
		repo := NewMockAccountRepo()
		uc := newAccountUC(repo)

		first, err := uc.ResolveOrCreate(ctx, &model.PurchaseEvent{Email: "a@x.com"})
		if err != nil {
			t.Fatalf("first resolve: %v", err)
		}
		second, err := uc.ResolveOrCreate(ctx, &model.PurchaseEvent{Email: "a@x.com"})
		if err != nil {
			t.Fatalf("second resolve: %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("expected the same account, got %s and %s", first.ID, second.ID)
		}
		if n, _ := uc.Count(ctx); n != 1 {
			t.Errorf("expected one account, got %d", n)
		}
	})

	t.Run("fills a blank phone but never clobbers a set one", func(t *testing.T) {
		repo := NewMockAccountRepo()
		uc := newAccountUC(repo)

		if _, err := uc.ResolveOrCreate(ctx, &model.PurchaseEvent{Email: "a@x.com"}); err != nil {
			t.Fatalf("create: %v", err)
		}
		account, err := uc.ResolveOrCreate(ctx, &model.PurchaseEvent{Email: "a@x.com", Phone: "+111"})
		if err != nil {
			t.Fatalf("fill phone: %v", err)
		}
		if account.Phone != "+111" {
			t.Errorf("expected blank phone to be filled, got %q", account.Phone)
		}

		account, err = uc.ResolveOrCreate(ctx, &model.PurchaseEvent{Email: "a@x.com", Phone: "+222"})
		if err != nil {
			t.Fatalf("resolve again: %v", err)
		}
		if account.Phone != "+111" {
			t.Errorf("existing phone must not be overwritten, got %q", account.Phone)
		}
	})

	t.Run("reactivates a deactivated account", func(t *testing.T) {
		repo := NewMockAccountRepo()
		uc := newAccountUC(repo)

		account, err := uc.ResolveOrCreate(ctx, &model.PurchaseEvent{Email: "a@x.com"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		account.Active = false
		if err := repo.Save(ctx, repository.NoTX, account); err != nil {
			t.Fatalf("deactivate: %v", err)
		}

		account, err = uc.ResolveOrCreate(ctx, &model.PurchaseEvent{Email: "a@x.com"})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if !account.Active {
			t.Error("expected account to be reactivated")
		}
	})

	t.Run("retries once after losing the create race", func(t *testing.T) {
		repo := NewMockAccountRepo()
		uc := newAccountUC(repo)

		winner, err := model.NewAccount("a@x.com", "", "")
		if err != nil {
			t.Fatalf("build winner: %v", err)
		}

		var calls int32
		repo.FindByEmailFunc = func(ctx context.Context, qx repository.Tx, email string) (*model.Account, error) {
			// First lookup misses; by the retry the winner's row is visible.
			if atomic.AddInt32(&calls, 1) == 1 {
				return nil, domain.ErrNotFound
			}
			cp := *winner
			return &cp, nil
		}
		repo.SaveFunc = func(ctx context.Context, qx repository.Tx, a *model.Account) error {
			return domain.ErrAlreadyExists
		}

		account, err := uc.ResolveOrCreate(ctx, &model.PurchaseEvent{Email: "a@x.com"})
		if err != nil {
			t.Fatalf("expected convergence on the winner, got: %v", err)
		}
		if account.ID != winner.ID {
			t.Errorf("expected winner account %s, got %s", winner.ID, account.ID)
		}
	})

	t.Run("rejects an empty email", func(t *testing.T) {
		uc := newAccountUC(NewMockAccountRepo())
		if _, err := uc.ResolveOrCreate(ctx, &model.PurchaseEvent{Email: ""}); err == nil {
			t.Fatal("expected an error for empty email")
		}
	})
}

func TestAccountUC_GetByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMockAccountRepo()
	uc := newAccountUC(repo)

	account, err := model.NewAccount("a@x.com", "Jane", "")
	if err != nil {
		t.Fatalf("build account: %v", err)
	}
	account.ID = uuid.NewString()
	if err := repo.Save(ctx, repository.NoTX, account); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := uc.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if got.Name != "Jane" {
		t.Errorf("expected Jane, got %q", got.Name)
	}

	if _, err := uc.GetByEmail(ctx, "missing@x.com"); err == nil {
		t.Fatal("expected an error for an unknown email")
	}
}
