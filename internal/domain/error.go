package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound             = errors.New("entity not found")
	ErrAlreadyExists        = errors.New("entity already exists")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrOperationFailed      = errors.New("operation failed")
	ErrReadDatabaseRow      = errors.New("failed to read database row")
	ErrInvalidExecContext   = errors.New("invalid executor context")
	ErrNoActivePlan         = errors.New("no active plan configured")
	ErrNoActiveSubscription = errors.New("no active subscription")

	// Normalization errors. These are expected outcomes, not failures:
	// the engine writes them on the event row and still acknowledges the caller.
	ErrEmailNotFound    = errors.New("Email not found in payload")
	ErrUnknownProvider  = errors.New("unknown payment provider")
	ErrMalformedPayload = errors.New("malformed payload")
)
