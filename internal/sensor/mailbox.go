package sensor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DoorOpenPath locates the door status inside a The Things Network uplink.
var DoorOpenPath = []string{"uplink_message", "decoded_payload", "DOOR_OPEN_STATUS"}

// doorOpen is the DOOR_OPEN_STATUS value reported when the flap was opened.
const doorOpen = 1

// Mailbox fires when a TTN uplink reports DOOR_OPEN_STATUS == 1.
type Mailbox struct {
	path []string
}

// NewMailbox returns a mailbox policy reading DoorOpenPath.
func NewMailbox() *Mailbox {
	return &Mailbox{path: DoorOpenPath}
}

// Kind implements Policy.
func (*Mailbox) Kind() Kind {
	return KindMailbox
}

// Evaluate implements Policy.
//
// Only an integer 1 fires. Malformed JSON, a missing field, or a value of the
// wrong type yields false and a descriptive error.
func (m *Mailbox) Evaluate(payload string) (bool, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("%w: trailing data after document", ErrMalformedPayload)
	}

	value, ok := Lookup(doc, m.path...)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrFieldMissing, strings.Join(m.path, "."))
	}

	num, ok := value.(json.Number)
	if !ok {
		return false, fmt.Errorf("%w: %s is %T", ErrFieldType, strings.Join(m.path, "."), value)
	}

	// Int64 rejects "1.0" and "1e0", only a plain integer counts.
	n, err := num.Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %s=%s is not an integer", ErrFieldType, strings.Join(m.path, "."), num)
	}

	return n == doorOpen, nil
}

// Lookup walks nested JSON objects along path. It returns false when any
// step is absent or is not an object.
func Lookup(doc any, path ...string) (any, bool) {
	current := doc
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
