package notify

import "context"

// Urgency maps onto Pushover message priority.
type Urgency int

// Urgency levels.
const (
	UrgencyNormal Urgency = 0
	UrgencyHigh   Urgency = 1
)

// Sound is a Pushover notification sound. The empty value means the
// recipient's default sound.
type Sound string

// Sounds.
const (
	SoundDefault Sound = ""
	SoundSiren   Sound = "siren"
)

// Message is one notification.
type Message struct {
	Title   string
	Body    string
	Urgency Urgency
	Sound   Sound
}

// Sink delivers messages. Implementations must be safe for concurrent use,
// since every broker session shares one sink.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, msg Message) error

// Send implements Sink.
func (f SinkFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
