package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThiefMaster/mqtt-alert/internal/notify"
	"github.com/ThiefMaster/mqtt-alert/internal/sensor"
	"github.com/ThiefMaster/mqtt-alert/internal/topic"
)

// Route pairs the topics a sensor publishes on with the policy that
// interprets them.
type Route struct {
	Patterns topic.Set
	Policy   sensor.Policy
}

// Dispatcher evaluates routes for one broker session.
//
// Thread Safety: not safe for concurrent use. OnMessage must be called from
// the owning session's loop only.
type Dispatcher struct {
	broker   string
	routes   []Route
	sink     notify.Sink
	logger   Logger
	recorder Recorder
}

// New creates a Dispatcher.
//
// Parameters:
//   - broker: Broker identity used in logs and telemetry
//   - routes: Routes evaluated in order for every message
//   - sink: Notification sink, shared between sessions
//   - logger: Logger instance (may be nil)
func New(broker string, routes []Route, sink notify.Sink, logger Logger) *Dispatcher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Dispatcher{
		broker: broker,
		routes: routes,
		sink:   sink,
		logger: logger,
	}
}

// SetRecorder attaches a telemetry recorder. Nil disables recording.
func (d *Dispatcher) SetRecorder(r Recorder) {
	d.recorder = r
}

// Broker returns the broker identity.
func (d *Dispatcher) Broker() string {
	return d.broker
}

// Topics returns the union of every route's patterns, de-duplicated, in
// first-seen order.
func (d *Dispatcher) Topics() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.routes {
		for _, f := range r.Patterns.Filters() {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// OnMessage runs every matching route against one message and notifies on
// each fire. Several routes may fire for the same message.
func (d *Dispatcher) OnMessage(ctx context.Context, topicName, payload string) {
	for _, r := range d.routes {
		if !r.Patterns.Matches(topicName) {
			continue
		}

		fired, err := d.evaluate(r.Policy, payload)
		if err != nil {
			d.logPolicyError(r.Policy.Kind(), topicName, err)
			continue
		}
		if !fired {
			continue
		}

		d.notify(ctx, sensor.Intent{Kind: r.Policy.Kind(), Topic: topicName})
	}
}

// evaluate calls the policy, converting a panic into an error.
func (d *Dispatcher) evaluate(p sensor.Policy, payload string) (fired bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			fired = false
			err = fmt.Errorf("%w: %v", ErrPolicyPanic, r)
		}
	}()
	return p.Evaluate(payload)
}

func (d *Dispatcher) logPolicyError(kind sensor.Kind, topicName string, err error) {
	args := []any{
		"broker", d.broker,
		"kind", kind.String(),
		"topic", topicName,
		"error", err,
	}
	switch {
	case errors.Is(err, ErrPolicyPanic):
		d.logger.Error("sensor policy panicked", args...)
	case errors.Is(err, sensor.ErrMalformedPayload):
		d.logger.Warn("malformed sensor payload", args...)
	default:
		d.logger.Debug("sensor payload ignored", args...)
	}
}

func (d *Dispatcher) notify(ctx context.Context, intent sensor.Intent) {
	msg := Render(intent)

	d.logger.Info("sending notification",
		"broker", d.broker,
		"kind", intent.Kind.String(),
		"topic", intent.Topic,
	)

	err := d.sink.Send(ctx, msg)
	if d.recorder != nil {
		d.recorder.RecordNotification(d.broker, intent.Kind.String(), intent.Topic, err == nil)
	}
	if err == nil {
		return
	}

	args := []any{
		"broker", d.broker,
		"kind", intent.Kind.String(),
		"topic", intent.Topic,
		"error", err,
	}
	switch {
	case errors.Is(err, notify.ErrRateLimited), errors.Is(err, notify.ErrCircuitOpen):
		d.logger.Warn("notification suppressed", args...)
	case errors.Is(err, context.Canceled):
		d.logger.Debug("notification cancelled", args...)
	default:
		d.logger.Error("notification delivery failed", args...)
	}
}
