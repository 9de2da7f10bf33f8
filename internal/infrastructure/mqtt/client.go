package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ThiefMaster/mqtt-alert/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang and turns its callbacks into a single
// stream of Events.
//
// paho dispatches PUBLISH packets one at a time in arrival order. The
// handler appends to an unbounded FIFO that a pump goroutine drains into
// Events(), so messages keep broker order and paho's reader never blocks on
// a slow consumer (a pending SUBACK is still read while the session is busy).
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Events() must have a single reader.
type Client struct {
	client  pahomqtt.Client
	options *pahomqtt.ClientOptions
	cfg     config.BrokerConfig

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	pumpOnce  sync.Once

	// queue holds events not yet handed to Events(), oldest first.
	queue   []Event
	queueMu sync.Mutex
	wake    chan struct{}

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	// logger for panic logging (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// New creates a client for one broker. No connection is attempted until Start.
//
// Parameters:
//   - cfg: Broker connection settings
//   - reconnect: paho reconnect timing
//
// Returns:
//   - *Client: Client ready to Start
func New(cfg config.BrokerConfig, reconnect config.MQTTReconnectConfig) *Client {
	c := &Client{
		cfg:    cfg,
		events: make(chan Event, eventBufferSize),
		done:   make(chan struct{}),
		wake:   make(chan struct{}, 1),
	}

	opts := buildClientOptions(cfg, reconnect)

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.setConnected(true)
		c.emit(Event{Kind: EventConnected})
	})

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.setConnected(false)
		c.emit(Event{Kind: EventError, Err: err})
	})

	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		c.emit(Event{Kind: EventReconnecting})
	})

	// Subscriptions are made without per-filter callbacks, so each PUBLISH
	// reaches this handler exactly once even when filters overlap.
	opts.SetDefaultPublishHandler(c.wrapHandler())

	c.options = opts
	c.client = pahomqtt.NewClient(opts)
	return c
}

// Start begins connecting in the background and returns immediately.
//
// With connect-retry enabled paho keeps trying until it succeeds, so the
// first EventConnected may arrive much later. A connect that is aborted
// (for example by Close) surfaces as an EventError.
func (c *Client) Start(ctx context.Context) error {
	select {
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return fmt.Errorf("mqtt start: %w", ctx.Err())
	default:
	}

	c.pumpOnce.Do(func() { go c.pump() })

	token := c.client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			c.emit(Event{Kind: EventError, Err: fmt.Errorf("connecting to %s: %w", brokerURL(c.cfg), err)})
		}
	}()

	return nil
}

// Events returns the event stream. The channel is never closed; stop
// reading once Close has been called.
func (c *Client) Events() <-chan Event {
	return c.events
}

// emit appends an event to the queue without blocking. Events emitted
// after Close are dropped.
func (c *Client) emit(ev Event) {
	select {
	case <-c.done:
		return
	default:
	}

	c.queueMu.Lock()
	c.queue = append(c.queue, ev)
	c.queueMu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// pump moves queued events to the events channel in FIFO order until Close.
func (c *Client) pump() {
	for {
		select {
		case <-c.done:
			return
		case <-c.wake:
		}

		for {
			ev, ok := c.dequeue()
			if !ok {
				break
			}
			select {
			case c.events <- ev:
			case <-c.done:
				return
			}
		}
	}
}

func (c *Client) dequeue() (Event, bool) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if len(c.queue) == 0 {
		return Event{}, false
	}
	ev := c.queue[0]
	c.queue[0] = Event{}
	c.queue = c.queue[1:]
	return ev, true
}

func (c *Client) setConnected(v bool) {
	c.connMu.Lock()
	c.connected = v
	c.connMu.Unlock()
}

// Close disconnects from the broker and stops event delivery.
//
// Returns:
//   - error: Always nil; calling Close more than once is safe
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.closeOnce.Do(func() {
		close(c.done)
		c.client.Disconnect(defaultDisconnectQuiesce)
		c.setConnected(false)
	})

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	if c.client == nil {
		return false
	}
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// Broker returns the broker URL this client connects to.
func (c *Client) Broker() string {
	return brokerURL(c.cfg)
}

// SetLogger sets a logger for panic logging.
// If not set, recovered panics are silently dropped.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler returns the paho publish handler, with panic recovery.
func (c *Client) wrapHandler() pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		c.emit(Event{
			Kind:    EventMessage,
			Topic:   msg.Topic(),
			Payload: msg.Payload(),
		})
	}
}
