package model

import (
	"time"

	"github.com/google/uuid"

	"sermon-subscription-billing/internal/domain"
)

type BillingInterval string

const (
	IntervalMonthly BillingInterval = "monthly"
	IntervalYearly  BillingInterval = "yearly"
)

// Plan is a purchasable subscription plan. The reconciliation path treats
// plans as read-only: when a payload carries no plan reference the first
// active plan is selected.
type Plan struct {
	ID         string // UUID
	Name       string
	PriceCents int64
	Interval   BillingInterval
	Active     bool
	CreatedAt  time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a plan.
func NewPlan(name string, priceCents int64, interval BillingInterval) (*Plan, error) {
	if name == "" || priceCents <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if interval != IntervalMonthly && interval != IntervalYearly {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:         uuid.NewString(),
		Name:       name,
		PriceCents: priceCents,
		Interval:   interval,
		Active:     true,
		CreatedAt:  time.Now(),
	}, nil
}
