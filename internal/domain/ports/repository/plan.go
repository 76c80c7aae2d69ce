package repository

import (
	"context"

	"sermon-subscription-billing/internal/domain/model"
)

// PlanRepository is the port for plan persistence. The reconciler only
// reads plans; Save/Delete exist for seeding and ops tooling.
type PlanRepository interface {
	Save(ctx context.Context, qx Tx, p *model.Plan) error
	FindByID(ctx context.Context, qx Tx, id string) (*model.Plan, error)
	// FindFirstActive returns the oldest active plan; the default when a
	// payload carries no plan reference.
	FindFirstActive(ctx context.Context, qx Tx) (*model.Plan, error)
	ListAll(ctx context.Context, qx Tx) ([]*model.Plan, error)
}
