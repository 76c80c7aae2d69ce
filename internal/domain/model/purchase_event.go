package model

// PurchaseStatus is the canonical, provider-agnostic event status.
type PurchaseStatus string

const (
	StatusApproved   PurchaseStatus = "approved"
	StatusRefunded   PurchaseStatus = "refunded"
	StatusChargeback PurchaseStatus = "chargeback"
	StatusCancelled  PurchaseStatus = "cancelled"
	StatusUnknown    PurchaseStatus = "unknown"
)

// Cancels reports whether the status terminates active subscriptions.
func (s PurchaseStatus) Cancels() bool {
	return s == StatusRefunded || s == StatusChargeback || s == StatusCancelled
}

// PurchaseEvent is the canonical representation of a provider webhook.
// It is produced by a normalizer, consumed once by the reconciler and
// never persisted; the raw payload on the WebhookEvent row is the record.
type PurchaseEvent struct {
	Email         string // required; the sole external identity key
	Name          string
	Phone         string
	Status        PurchaseStatus
	TransactionID string // provider-assigned external id, may be empty
	PlanID        string // rarely present; empty means "use default plan"
	Source        string // provider tag
}
