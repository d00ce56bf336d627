package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const probeTimeout = 3 * time.Second

// Pinger is satisfied by every backend the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	backends map[string]Pinger
	timeout  time.Duration
}

// NewHealthHandler checks backends, keyed by the name reported in the
// readiness payload.
func NewHealthHandler(backends map[string]Pinger) *HealthHandler {
	return &HealthHandler{backends: backends, timeout: probeTimeout}
}

type backendStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status   string                   `json:"status"`
	Backends map[string]backendStatus `json:"dependencies"`
}

// Liveness answers as long as the process serves HTTP.
//
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness pings every backend within one shared deadline.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp := readinessResponse{Status: "ok", Backends: make(map[string]backendStatus, len(h.backends))}
	for name, p := range h.backends {
		st := backendStatus{Status: "ok"}
		if err := p.Ping(ctx); err != nil {
			st = backendStatus{Status: "unhealthy", Error: err.Error()}
			resp.Status = "degraded"
		}
		resp.Backends[name] = st
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}
