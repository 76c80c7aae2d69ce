// File: internal/usecase/account_uc.go
package usecase

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"sermon-subscription-billing/internal/domain"
	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/repository"
	"sermon-subscription-billing/internal/infra/logging"
	"sermon-subscription-billing/internal/infra/metrics"
)

// Compile-time check
var _ AccountUseCase = (*accountUC)(nil)

// AccountUseCase resolves buyer accounts from canonical purchase events.
type AccountUseCase interface {
	// ResolveOrCreate looks up the account by email, creating it on first
	// purchase. Updates to an existing account are monotonic: blanks are
	// filled, set values are never clobbered.
	ResolveOrCreate(ctx context.Context, ev *model.PurchaseEvent) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	Count(ctx context.Context) (int, error)
}

type accountUC struct {
	accounts repository.AccountRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewAccountUseCase(accounts repository.AccountRepository, tm repository.TransactionManager, logger *zerolog.Logger) *accountUC {
	return &accountUC{accounts: accounts, tm: tm, log: logger}
}

func (u *accountUC) ResolveOrCreate(ctx context.Context, ev *model.PurchaseEvent) (*model.Account, error) {
	defer logging.TraceDuration(u.log, "AccountUC.ResolveOrCreate")()

	var account *model.Account
	run := func() error {
		// The find and the save must be one atomic unit so two concurrent
		// events for the same new buyer cannot both create an account.
		txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
		return u.tm.WithTx(ctx, txOpts, func(ctx context.Context, qx repository.Tx) error {
			acc, err := u.accounts.FindByEmail(ctx, qx, ev.Email)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}

			if !acc.IsZero() {
				changed := false
				if acc.Phone == "" && ev.Phone != "" {
					acc.Phone = ev.Phone
					changed = true
				}
				if !acc.Active {
					acc.Active = true
					changed = true
				}
				if changed {
					if err := u.accounts.Save(ctx, qx, acc); err != nil {
						return err
					}
				}
				account = acc
				return nil
			}

			na, err := model.NewAccount(ev.Email, ev.Name, ev.Phone)
			if err != nil {
				return err
			}
			if err := u.accounts.Save(ctx, qx, na); err != nil {
				return err
			}
			metrics.IncAccountsCreated()
			account = na
			return nil
		})
	}

	err := run()
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Lost the create race on the email unique index; the winner's row
		// is there now, so one re-run converges on it.
		u.log.Debug().Str("email", logging.RedactEmail(ev.Email, false)).Msg("account create race, retrying")
		err = run()
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (u *accountUC) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	defer logging.TraceDuration(u.log, "AccountUC.GetByEmail")()
	return u.accounts.FindByEmail(ctx, repository.NoTX, email)
}

func (u *accountUC) Count(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "AccountUC.Count")()
	return u.accounts.CountAccounts(ctx, repository.NoTX)
}
