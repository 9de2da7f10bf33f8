package dispatch

import "errors"

// Domain errors for the dispatch package.
var (
	// ErrPolicyPanic indicates a sensor policy panicked while evaluating a payload.
	ErrPolicyPanic = errors.New("dispatch: policy panicked")
)
