package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// BrokerStatus is the connection state of one broker session.
type BrokerStatus struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Connected bool   `json:"connected"`
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Status  string         `json:"status"`
	Brokers []BrokerStatus `json:"brokers"`
	Breaker   string         `json:"notify_breaker,omitempty"`
	Telemetry string         `json:"telemetry,omitempty"`
}

// Readiness states.
const (
	statusOK          = "ok"
	statusDegraded    = "degraded"
	statusUnavailable = "unavailable"
)

// telemetryCheckTimeout bounds the telemetry ping made per status request.
const telemetryCheckTimeout = 2 * time.Second

func (s *Server) brokerStatus(name string) BrokerStatus {
	probe := s.brokers[name]
	return BrokerStatus{
		Name:      name,
		URL:       probe.Broker(),
		Connected: probe.IsConnected(),
	}
}

// handleStatus reports every broker. It answers 503 when any broker is
// disconnected or the notification breaker is open. Telemetry health is
// reported but never degrades the status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Status: statusOK}

	for _, name := range s.names {
		b := s.brokerStatus(name)
		if !b.Connected {
			resp.Status = statusDegraded
		}
		resp.Brokers = append(resp.Brokers, b)
	}

	if s.breaker != nil {
		resp.Breaker = s.breaker.State()
		if resp.Breaker == "open" {
			resp.Status = statusDegraded
		}
	}

	if s.telemetry != nil {
		resp.Telemetry = s.telemetryStatus(r.Context())
	}

	code := http.StatusOK
	if resp.Status != statusOK {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// handleBrokerStatus reports a single broker by name.
func (s *Server) handleBrokerStatus(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "broker")
	if _, ok := s.brokers[name]; !ok {
		writeNotFound(w, "unknown broker: "+name)
		return
	}

	b := s.brokerStatus(name)
	code := http.StatusOK
	if !b.Connected {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, b)
}

func (s *Server) telemetryStatus(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, telemetryCheckTimeout)
	defer cancel()

	if err := s.telemetry.HealthCheck(ctx); err != nil {
		s.logger.Debug("telemetry health check failed", "error", err)
		return statusUnavailable
	}
	return statusOK
}
