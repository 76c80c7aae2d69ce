package provider

import (
	"encoding/json"
	"strings"

	"sermon-subscription-billing/internal/domain"
	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/adapter"
)

const SourceKirvano = "kirvano"

// Compile-time check
var _ adapter.PayloadNormalizer = (*KirvanoNormalizer)(nil)

// KirvanoNormalizer handles Kirvano's flatter, less stable payload shape.
// Buyer fields arrive at the top level or under customer/buyer depending
// on the event, and the status key has changed names across versions.
//
// Extraction rules, in order:
//
//	status: status, transaction.status, current_status
//	email:  email, customer.email, buyer.email
//	name:   name, customer.name, buyer.name
//	phone:  phone, customer.phone_number, customer.phone, buyer.phone
//	txid:   sale_id, transaction.id, transaction_id, checkout_id
type KirvanoNormalizer struct{}

func NewKirvanoNormalizer() *KirvanoNormalizer { return &KirvanoNormalizer{} }

func (n *KirvanoNormalizer) Source() string { return SourceKirvano }

func (n *KirvanoNormalizer) Normalize(payload []byte) (*model.PurchaseEvent, error) {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, domain.ErrMalformedPayload
	}

	email := firstOf(doc, "email", "customer.email", "buyer.email")
	if email == "" {
		return nil, domain.ErrEmailNotFound
	}

	return &model.PurchaseEvent{
		Email:         strings.ToLower(email),
		Name:          firstOf(doc, "name", "customer.name", "buyer.name"),
		Phone:         firstOf(doc, "phone", "customer.phone_number", "customer.phone", "buyer.phone"),
		Status:        n.mapStatus(firstOf(doc, "status", "transaction.status", "current_status")),
		TransactionID: firstOf(doc, "sale_id", "transaction.id", "transaction_id", "checkout_id"),
		Source:        SourceKirvano,
	}, nil
}

// mapStatus folds Kirvano's payment vocabulary onto the canonical set.
// Refund, chargeback and cancellation stay distinct in the audit trail
// even though the reconciler treats all three as terminating.
func (n *KirvanoNormalizer) mapStatus(raw string) model.PurchaseStatus {
	switch strings.ToLower(raw) {
	case "paid", "approved", "completed", "succeeded", "authorized":
		return model.StatusApproved
	case "refunded":
		return model.StatusRefunded
	case "chargedback", "chargeback":
		return model.StatusChargeback
	case "cancelled", "canceled":
		return model.StatusCancelled
	default:
		return model.StatusUnknown
	}
}
