package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gregdel/pushover"
)

const (
	// apiVersionPath is appended to the configured API URL.
	apiVersionPath = "/1"

	// defaultTimeout bounds one delivery when the caller passes zero.
	defaultTimeout = 10 * time.Second
)

// endpointMu serialises writes to pushover.APIEndpoint, which the library
// keeps as a package variable.
var endpointMu sync.Mutex

// PushoverConfig holds the two opaque credentials and endpoint settings.
type PushoverConfig struct {
	// Token is the application API token.
	Token string

	// User is the recipient user or group key.
	User string

	// APIURL is the API base URL, e.g. https://api.pushover.net.
	APIURL string

	// Timeout bounds a single delivery.
	Timeout time.Duration
}

// Pushover sends messages through the Pushover API.
//
// Thread Safety: Send is safe for concurrent use.
type Pushover struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
	timeout   time.Duration
}

// NewPushover creates a Pushover sink and points the client library at
// cfg.APIURL.
func NewPushover(cfg PushoverConfig) *Pushover {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if cfg.APIURL != "" {
		endpointMu.Lock()
		pushover.APIEndpoint = strings.TrimRight(cfg.APIURL, "/") + apiVersionPath
		endpointMu.Unlock()
	}

	return &Pushover{
		app:       pushover.New(cfg.Token),
		recipient: pushover.NewRecipient(cfg.User),
		timeout:   timeout,
	}
}

// Send implements Sink.
//
// High urgency maps to priority 1, which bypasses the recipient's quiet hours.
// The library call has no context; when ctx ends or the timeout passes first
// Send returns and the request finishes in the background.
//
// Returns:
//   - error: wrapped ErrDeliveryFailed on transport errors, non-2xx responses
//     or a response with status != 1
func (p *Pushover) Send(ctx context.Context, msg Message) error {
	m := pushover.NewMessageWithTitle(msg.Body, msg.Title)
	m.Priority = pushover.PriorityNormal
	if msg.Urgency == UrgencyHigh {
		m.Priority = pushover.PriorityHigh
	}
	if msg.Sound != SoundDefault {
		m.Sound = string(msg.Sound)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		resp *pushover.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := p.app.SendMessage(m, p.recipient)
		done <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("%w: %w", ErrDeliveryFailed, r.err)
		}
		if r.resp == nil || r.resp.Status != 1 {
			return fmt.Errorf("%w: API rejected message", ErrDeliveryFailed)
		}
		return nil
	}
}
