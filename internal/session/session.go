package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThiefMaster/mqtt-alert/internal/infrastructure/mqtt"
)

// DefaultRetryBackoff is the pause after a connection error.
const DefaultRetryBackoff = 2 * time.Second

// subscribeQoS is the QoS requested for every filter.
const subscribeQoS byte = 0

// Transport is a broker connection that reports everything through a single
// event stream. Implemented by *mqtt.Client.
type Transport interface {
	Start(ctx context.Context) error
	Events() <-chan mqtt.Event
	Subscribe(ctx context.Context, topic string, qos byte) error
	Close() error
}

// Dispatcher consumes decoded messages. Implemented by *dispatch.Dispatcher.
type Dispatcher interface {
	Topics() []string
	OnMessage(ctx context.Context, topic, payload string)
}

// Logger defines the logging interface used by Session.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Recorder receives session lifecycle events for telemetry.
type Recorder interface {
	RecordSessionEvent(broker, event string)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Session drives one broker connection.
//
// Thread Safety: Run must be called at most once.
type Session struct {
	broker     string
	transport  Transport
	dispatcher Dispatcher
	backoff    time.Duration
	logger     Logger
	recorder   Recorder
	topics     []string
}

// Option configures a Session.
type Option func(*Session)

// WithBackoff sets the pause after a connection error. Non-positive values
// keep the default.
func WithBackoff(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.backoff = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder attaches a telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// New creates a Session. The subscription set is taken from the dispatcher
// once and reused for every reconnect.
func New(broker string, transport Transport, dispatcher Dispatcher, opts ...Option) *Session {
	s := &Session{
		broker:     broker,
		transport:  transport,
		dispatcher: dispatcher,
		backoff:    DefaultRetryBackoff,
		logger:     noopLogger{},
		topics:     dispatcher.Topics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Broker returns the broker identity.
func (s *Session) Broker() string {
	return s.broker
}

// Topics returns the subscription set.
func (s *Session) Topics() []string {
	out := make([]string, len(s.topics))
	copy(out, s.topics)
	return out
}

// Run starts the transport and processes events until ctx is cancelled.
//
// Returns:
//   - nil when ctx is cancelled
//   - wrapped mqtt.ErrSubscribeFailed when the broker rejects a filter
//   - ErrNoTopics, ErrEventStreamClosed, or a transport start error
func (s *Session) Run(ctx context.Context) error {
	if len(s.topics) == 0 {
		return fmt.Errorf("%s: %w", s.broker, ErrNoTopics)
	}

	if err := s.transport.Start(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%s: starting transport: %w", s.broker, err)
	}
	defer s.transport.Close() //nolint:errcheck // Close always returns nil

	s.logger.Info("broker session started", "broker", s.broker, "topics", len(s.topics))

	events := s.transport.Events()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("broker session stopped", "broker", s.broker)
			return nil
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("%s: %w", s.broker, ErrEventStreamClosed)
			}
			if err := s.handle(ctx, ev); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, ev mqtt.Event) error {
	switch ev.Kind {
	case mqtt.EventConnected:
		s.record(ev.Kind.String())
		s.logger.Info("connected to broker", "broker", s.broker)
		return s.subscribeAll(ctx)

	case mqtt.EventMessage:
		payload := DecodePayload(ev.Payload)
		s.logger.Debug(ev.Topic+" -> "+payload, "broker", s.broker)
		s.dispatcher.OnMessage(ctx, ev.Topic, payload)

	case mqtt.EventError:
		s.record(ev.Kind.String())
		s.logger.Warn("broker connection error",
			"broker", s.broker,
			"error", ev.Err,
			"retry_in", s.backoff.String(),
		)
		sleep(ctx, s.backoff)

	default:
		s.logger.Debug("broker event", "broker", s.broker, "event", ev.Kind.String())
	}
	return nil
}

// subscribeAll subscribes to the full set, one SUBACK at a time.
func (s *Session) subscribeAll(ctx context.Context) error {
	for _, filter := range s.topics {
		err := s.transport.Subscribe(ctx, filter, subscribeQoS)
		switch {
		case err == nil:
			s.logger.Debug("subscribed", "broker", s.broker, "topic", filter)
		case errors.Is(err, mqtt.ErrNotConnected):
			// Lost again before the SUBACK; the next connected event retries.
			s.logger.Warn("connection lost while subscribing", "broker", s.broker, "topic", filter)
			return nil
		default:
			return fmt.Errorf("%s: subscribing to %q: %w", s.broker, filter, err)
		}
	}
	s.record("subscribed")
	return nil
}

func (s *Session) record(event string) {
	if s.recorder != nil {
		s.recorder.RecordSessionEvent(s.broker, event)
	}
}

// DecodePayload converts a raw payload to text, replacing invalid UTF-8
// sequences with U+FFFD.
func DecodePayload(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "\uFFFD")
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
