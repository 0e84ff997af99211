package common

import "errors"

var (
	// ErrNotFound covers a missing event, category, booking or payment.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientInventory means the category had fewer free ticket
	// slots than the request asked for. Retryable with another category
	// or a smaller quantity, never with the same request as-is.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrGateway wraps failures of synchronous payment-gateway calls.
	ErrGateway = errors.New("payment gateway error")

	// ErrInvalidToken means a ticket code failed decryption or decoding.
	ErrInvalidToken = errors.New("invalid ticket token")
)
