package influxdb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/ThiefMaster/mqtt-alert/internal/infrastructure/config"
)

const (
	// pingTimeout bounds the reachability check in Connect and HealthCheck.
	pingTimeout = 5 * time.Second

	// Used when batch_size or flush_interval is unset.
	defaultBatchSize     = 20
	defaultFlushInterval = 10 * time.Second
)

// Client records session lifecycle events and notification outcomes.
//
// Writes go through the library's non-blocking write API and never stall the
// alerting path. Once Close has been called every Record* call is a no-op.
//
// Thread Safety: All methods are safe for concurrent use.
type Client struct {
	client influxdb2.Client
	writes api.WriteAPI
	closed atomic.Bool

	onErrorMu sync.RWMutex
	onError   func(err error)
}

// Connect pings the server and prepares a batched writer for cfg.Bucket.
//
// Returns ErrDisabled when telemetry is switched off, and a wrapped
// ErrConnectionFailed when the server is unreachable or unhealthy. The
// caller decides whether to run without telemetry.
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	opts := influxdb2.DefaultOptions().
		SetBatchSize(batchSize(cfg)).
		SetFlushInterval(flushIntervalMillis(cfg))
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	if err := ping(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := &Client{
		client: client,
		writes: client.WriteAPI(cfg.Org, cfg.Bucket),
	}
	go c.forwardErrors(c.writes.Errors())

	return c, nil
}

func batchSize(cfg config.InfluxDBConfig) uint {
	if cfg.BatchSize <= 0 {
		return defaultBatchSize
	}
	return uint(cfg.BatchSize) // #nosec G115 -- checked positive above
}

func flushIntervalMillis(cfg config.InfluxDBConfig) uint {
	interval := defaultFlushInterval
	if cfg.FlushInterval > 0 {
		interval = time.Duration(cfg.FlushInterval) * time.Second
	}
	return uint(interval / time.Millisecond) // #nosec G115 -- positive
}

func ping(ctx context.Context, client influxdb2.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if !healthy {
		return fmt.Errorf("ping: server not ready")
	}
	return nil
}

// forwardErrors hands asynchronous write failures to the OnError callback.
// The channel is closed by the library when the client closes.
func (c *Client) forwardErrors(errs <-chan error) {
	for err := range errs {
		c.onErrorMu.RLock()
		callback := c.onError
		c.onErrorMu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

// SetOnError registers a callback for failed background writes.
func (c *Client) SetOnError(callback func(err error)) {
	c.onErrorMu.Lock()
	c.onError = callback
	c.onErrorMu.Unlock()
}

// HealthCheck pings the server. The status server reports the result as
// telemetry health; it never affects alerting.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.client == nil || c.closed.Load() {
		return ErrNotConnected
	}
	return ping(ctx, c.client)
}

// Close flushes buffered points and releases the client. Safe to call more
// than once and on a zero Client.
func (c *Client) Close() error {
	if c.client == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.writes.Flush()
	c.client.Close()
	return nil
}

func (c *Client) active() bool {
	return c.writes != nil && !c.closed.Load()
}
