package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/studybuddy-api/internal/api/shared"
	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
	"github.com/phrazzld/studybuddy-api/internal/redact"
)

// ServiceName is reported by the health endpoints.
const ServiceName = "Study Buddy API"

// Health check states.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusWarning   = "warning"
)

// healthCheckTimeout bounds each dependency check of the detailed health endpoint.
const healthCheckTimeout = 3 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to the Pinger interface.
type PingFunc func(ctx context.Context) error

// PingContext implements Pinger.
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// SessionCleaner removes expired sessions.
type SessionCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// HealthConfig holds the dependencies inspected by the health endpoints.
type HealthConfig struct {
	Version  string
	Database Pinger
	// Cache is optional; nil means no result cache is configured.
	Cache    Pinger
	Sessions SessionCleaner
	// Strategies names the configured generation backend strategies.
	Strategies []string
}

// HealthCheck is the result of one dependency check.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Service string                 `json:"service,omitempty"`
	Version string                 `json:"version,omitempty"`
	Checks  map[string]HealthCheck `json:"checks,omitempty"`
}

// HealthHandler serves liveness and dependency health
type HealthHandler struct {
	cfg    HealthConfig
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(cfg HealthConfig, logger *slog.Logger) *HealthHandler {
	if cfg.Database == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("database cannot be nil for HealthHandler")
	}
	if cfg.Sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions cannot be nil for HealthHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /health requests
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithData(w, r, http.StatusOK, HealthResponse{
		Status:  StatusHealthy,
		Service: ServiceName,
		Version: h.cfg.Version,
	}, "")
}

// Detailed handles GET /health/detailed requests. It answers 503 when the
// database is unreachable and reports degraded when any check warns.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	checks := make(map[string]HealthCheck, 4)
	healthy := true

	if err := h.ping(r.Context(), h.cfg.Database); err != nil {
		log.Error("database health check failed", slog.String("error", redact.Error(err)))
		checks["database"] = HealthCheck{Status: StatusUnhealthy, Message: "Database connection failed"}
		healthy = false
	} else {
		checks["database"] = HealthCheck{Status: StatusHealthy, Message: "Database connection successful"}
	}

	if n := len(h.cfg.Strategies); n > 0 {
		checks["generation_backend"] = HealthCheck{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%d generation strategies configured", n),
		}
	} else {
		checks["generation_backend"] = HealthCheck{
			Status:  StatusWarning,
			Message: "API token not configured, using fallback generation",
		}
	}

	if h.cfg.Cache != nil {
		if err := h.ping(r.Context(), h.cfg.Cache); err != nil {
			log.Warn("cache health check failed", slog.String("error", redact.Error(err)))
			checks["cache"] = HealthCheck{Status: StatusWarning, Message: "Cache unreachable, generating without cache"}
		} else {
			checks["cache"] = HealthCheck{Status: StatusHealthy, Message: "Cache connection successful"}
		}
	}

	if n, err := h.cfg.Sessions.CleanupExpired(r.Context()); err != nil {
		log.Warn("session cleanup during health check failed", slog.String("error", redact.Error(err)))
		checks["session_cleanup"] = HealthCheck{Status: StatusWarning, Message: "Session cleanup failed"}
	} else {
		checks["session_cleanup"] = HealthCheck{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("Cleaned up %d expired sessions", n),
		}
	}

	resp := HealthResponse{Status: StatusHealthy, Service: ServiceName, Version: h.cfg.Version, Checks: checks}
	status := http.StatusOK
	switch {
	case !healthy:
		resp.Status = StatusUnhealthy
		status = http.StatusServiceUnavailable
	case anyWarning(checks):
		resp.Status = StatusDegraded
	}

	if !healthy {
		shared.RespondWithJSON(w, r, status, shared.Envelope{
			Success:   false,
			Data:      resp,
			Error:     "Service unhealthy",
			TraceID:   shared.GetTraceID(r.Context()),
			Timestamp: time.Now().UTC(),
		})
		return
	}
	shared.RespondWithData(w, r, status, resp, "")
}

func (h *HealthHandler) ping(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return p.PingContext(ctx)
}

func anyWarning(checks map[string]HealthCheck) bool {
	for _, c := range checks {
		if c.Status == StatusWarning {
			return true
		}
	}
	return false
}
