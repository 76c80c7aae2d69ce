package model

import (
	"time"

	"github.com/oklog/ulid/v2"

	"sermon-subscription-billing/internal/domain"
)

// WebhookEvent is the immutable audit record of one inbound provider call.
// A row is written before any interpretation of the payload and mutated
// exactly once afterwards, to set the processing outcome. Rows are never
// deleted outside an explicit administrative purge.
type WebhookEvent struct {
	ID        string // ULID, lexically ordered by receive time
	Source    string // provider tag, e.g. "hotmart"
	EventType string // provider's own event name, best-effort
	Payload   []byte // raw body exactly as received
	Processed bool
	Error     *string
	CreatedAt time.Time
}

// NewWebhookEvent records the raw inbound call prior to processing.
func NewWebhookEvent(source, eventType string, payload []byte) (*WebhookEvent, error) {
	if source == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &WebhookEvent{
		ID:        ulid.Make().String(),
		Source:    source,
		EventType: eventType,
		Payload:   payload,
		Processed: false,
		CreatedAt: time.Now(),
	}, nil
}

// MarkProcessed finalizes the event, optionally with an explanatory error.
func (e *WebhookEvent) MarkProcessed(errMsg string) {
	e.Processed = true
	if errMsg != "" {
		e.Error = &errMsg
	}
}
