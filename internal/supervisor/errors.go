package supervisor

import "errors"

// Domain errors for the supervisor package.
var (
	// ErrNoSessions indicates Run was given nothing to supervise.
	ErrNoSessions = errors.New("supervisor: no sessions configured")

	// ErrDuplicateBroker indicates two units share a broker name.
	ErrDuplicateBroker = errors.New("supervisor: duplicate broker name")

	// ErrInvalidUnit indicates a unit without a name or runner.
	ErrInvalidUnit = errors.New("supervisor: invalid unit")
)
