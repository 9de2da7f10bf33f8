package notify

import "errors"

// Delivery errors. Use errors.Is() to check for these errors in calling code.
var (
	// ErrDeliveryFailed is returned when the API rejects or cannot be reached.
	ErrDeliveryFailed = errors.New("notify: delivery failed")

	// ErrRateLimited is returned when Guard drops a message above the configured rate.
	ErrRateLimited = errors.New("notify: rate limited")

	// ErrCircuitOpen is returned while Guard's breaker is open.
	ErrCircuitOpen = errors.New("notify: circuit open")
)
