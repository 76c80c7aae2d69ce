package adapter

import (
	"sermon-subscription-billing/internal/domain/model"
)

// PayloadNormalizer translates one provider's raw webhook payload into the
// canonical PurchaseEvent. Implementations own their provider's nested
// payload shape and probe an ordered list of plausible field paths,
// since source platforms are not schema-stable.
//
// A missing buyer email yields domain.ErrEmailNotFound; an unrecognized
// status vocabulary maps to model.StatusUnknown rather than an error.
type PayloadNormalizer interface {
	// Source returns the provider tag this normalizer handles.
	Source() string
	Normalize(payload []byte) (*model.PurchaseEvent, error)
}
