package model

import (
	"time"

	"github.com/google/uuid"

	"sermon-subscription-billing/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription binds an account to a plan. At most one row per account may
// be active at any instant; a cancelled subscription is never resurrected,
// a later approved purchase creates a fresh row instead.
type Subscription struct {
	ID            string // UUID
	AccountID     string
	PlanID        string
	Status        SubscriptionStatus
	StartedAt     time.Time
	CancelledAt   *time.Time
	TransactionID string // external transaction id copied from the event
	CreatedAt     time.Time
}

// NewSubscription creates an active subscription for an account.
func NewSubscription(accountID string, plan *Plan, transactionID string) (*Subscription, error) {
	if accountID == "" || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:            uuid.NewString(),
		AccountID:     accountID,
		PlanID:        plan.ID,
		Status:        SubscriptionStatusActive,
		StartedAt:     now,
		TransactionID: transactionID,
		CreatedAt:     now,
	}, nil
}

// Cancel transitions the subscription to cancelled, stamping the time.
func (s *Subscription) Cancel(at time.Time) {
	if s.Status == SubscriptionStatusCancelled {
		return
	}
	s.Status = SubscriptionStatusCancelled
	s.CancelledAt = &at
}
