// Package api provides the local HTTP status server for mqtt-alert.
//
// It exposes liveness, per-broker connection state and runtime metrics to
// monitoring (a Docker health check, Uptime Kuma, a curl in a cron job).
// Nothing in it changes the behaviour of the alerting path.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/ThiefMaster/mqtt-alert/internal/infrastructure/config"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 5 * time.Second

// BrokerProbe reports the connection state of one broker. Implemented by
// *mqtt.Client.
type BrokerProbe interface {
	IsConnected() bool
	Broker() string
}

// BreakerProbe reports the notification circuit breaker state. Implemented
// by *notify.Guard.
type BreakerProbe interface {
	State() string
}

// TelemetryProbe checks the telemetry backend. Implemented by
// *influxdb.Client.
type TelemetryProbe interface {
	HealthCheck(ctx context.Context) error
}

// Logger defines the logging interface used by the Server.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  Logger
	Brokers map[string]BrokerProbe
	Breaker   BreakerProbe   // optional
	Telemetry TelemetryProbe // optional
	Version   string
}

// Server is the HTTP status server.
type Server struct {
	cfg       config.APIConfig
	logger    Logger
	brokers   map[string]BrokerProbe
	names     []string
	breaker   BreakerProbe
	telemetry TelemetryProbe
	version   string
	startTime time.Time
	server    *http.Server
	listener  net.Listener
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if len(deps.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker probe is required")
	}

	names := make([]string, 0, len(deps.Brokers))
	for name := range deps.Brokers {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		brokers:   deps.Brokers,
		names:     names,
		breaker:   deps.Breaker,
		telemetry: deps.Telemetry,
		version:   deps.Version,
		startTime: time.Now(),
	}, nil
}

// Start binds the listen address and serves requests in a background
// goroutine. Binding happens before Start returns, so a port already in use
// is reported here.
//
// Parameters:
//   - ctx: Context for the bind operation
//
// Returns:
//   - error: If the address cannot be bound
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server listening", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
