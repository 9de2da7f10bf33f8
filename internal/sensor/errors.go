package sensor

import "errors"

// Payload errors. These never stop a session; the dispatcher logs them and
// treats the message as "no event".
var (
	// ErrMalformedPayload is returned when a payload cannot be decoded.
	ErrMalformedPayload = errors.New("sensor: malformed payload")

	// ErrFieldMissing is returned when an expected field path is absent.
	ErrFieldMissing = errors.New("sensor: field missing")

	// ErrFieldType is returned when a field has an unexpected type.
	ErrFieldType = errors.New("sensor: unexpected field type")
)
