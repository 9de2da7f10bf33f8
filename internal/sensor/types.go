package sensor

// Kind identifies the logical sensor that produced a notification.
type Kind int

// Sensor kinds.
const (
	KindFlood Kind = iota + 1
	KindMailbox
	KindApplianceDone
)

// String returns the lowercase name used in logs and telemetry.
func (k Kind) String() string {
	switch k {
	case KindFlood:
		return "flood"
	case KindMailbox:
		return "mailbox"
	case KindApplianceDone:
		return "appliance_done"
	default:
		return "unknown"
	}
}

// Intent is a decision to notify a human. It carries no retry state.
type Intent struct {
	Kind  Kind
	Topic string
}

// Policy decides whether a payload constitutes an event.
//
// Evaluate returns true when the event fired. An error means the payload
// could not be interpreted; the result is then always false.
type Policy interface {
	Kind() Kind
	Evaluate(payload string) (bool, error)
}
