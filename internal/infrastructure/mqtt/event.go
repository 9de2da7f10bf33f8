package mqtt

// EventKind classifies a transport event.
type EventKind int

// Transport event kinds.
const (
	// EventConnected is emitted on every successful CONNACK, including reconnects.
	EventConnected EventKind = iota + 1

	// EventMessage is an incoming PUBLISH.
	EventMessage

	// EventError is a transient failure: connection lost or a failed connect.
	EventError

	// EventReconnecting is emitted before paho retries a lost connection.
	EventReconnecting
)

// String returns the event name used in logs and telemetry.
func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventMessage:
		return "message"
	case EventError:
		return "connection_lost"
	case EventReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Event is one item of a broker connection's event stream.
type Event struct {
	Kind EventKind

	// Topic and Payload are set for EventMessage.
	Topic   string
	Payload []byte

	// Err is set for EventError.
	Err error
}
