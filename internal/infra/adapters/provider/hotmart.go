package provider

import (
	"encoding/json"
	"strings"

	"sermon-subscription-billing/internal/domain"
	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/adapter"
)

const SourceHotmart = "hotmart"

// Compile-time check
var _ adapter.PayloadNormalizer = (*HotmartNormalizer)(nil)

// HotmartNormalizer handles Hotmart's v2 webhook shape: the purchase lives
// under data.purchase and the buyer under data.buyer. Older deliveries
// have been seen with the buyer nested one level higher, so every field
// carries a fallback path.
//
// Extraction rules, in order:
//
//	status: data.purchase.status, data.status, status
//	email:  data.buyer.email, data.purchase.buyer.email, buyer.email
//	name:   data.buyer.name, buyer.name
//	phone:  data.buyer.checkout_phone, data.buyer.phone
//	txid:   data.purchase.transaction, data.transaction, transaction
type HotmartNormalizer struct{}

func NewHotmartNormalizer() *HotmartNormalizer { return &HotmartNormalizer{} }

func (n *HotmartNormalizer) Source() string { return SourceHotmart }

func (n *HotmartNormalizer) Normalize(payload []byte) (*model.PurchaseEvent, error) {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, domain.ErrMalformedPayload
	}

	email := firstOf(doc, "data.buyer.email", "data.purchase.buyer.email", "buyer.email")
	if email == "" {
		return nil, domain.ErrEmailNotFound
	}

	return &model.PurchaseEvent{
		Email:         strings.ToLower(email),
		Name:          firstOf(doc, "data.buyer.name", "buyer.name"),
		Phone:         firstOf(doc, "data.buyer.checkout_phone", "data.buyer.phone"),
		Status:        n.mapStatus(firstOf(doc, "data.purchase.status", "data.status", "status")),
		TransactionID: firstOf(doc, "data.purchase.transaction", "data.transaction", "transaction"),
		Source:        SourceHotmart,
	}, nil
}

func (n *HotmartNormalizer) mapStatus(raw string) model.PurchaseStatus {
	switch strings.ToLower(raw) {
	case "approved":
		return model.StatusApproved
	case "refunded":
		return model.StatusRefunded
	case "chargeback":
		return model.StatusChargeback
	case "canceled", "cancelled":
		return model.StatusCancelled
	default:
		return model.StatusUnknown
	}
}
