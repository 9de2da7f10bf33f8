package topic

import "errors"

// Validation errors. Use errors.Is() to check for these in calling code.
var (
	// ErrEmptyPattern is returned for an empty pattern string.
	ErrEmptyPattern = errors.New("topic: pattern cannot be empty")

	// ErrMisplacedMultiLevel is returned when '#' is not the final segment.
	ErrMisplacedMultiLevel = errors.New("topic: '#' must be the last segment")

	// ErrMixedWildcard is returned when a wildcard shares a segment with other characters.
	ErrMixedWildcard = errors.New("topic: wildcard must occupy a whole segment")
)
