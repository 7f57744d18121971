package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a backend that can be health-checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Backends  map[string]string `json:"backends,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	backends    map[string]Pinger
	timeout     time.Duration
}

// NewHealthHandler reports liveness plus the state of every named backend.
func NewHealthHandler(serviceName, version string, backends map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		backends:    backends,
		timeout:     time.Second,
	}
}

// HealthCheck always answers 200 while the process is serving; a backend
// that is down only changes the status to "degraded".
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	var states map[string]string

	if len(h.backends) > 0 {
		states = make(map[string]string, len(h.backends))
		names := make([]string, 0, len(h.backends))
		for name := range h.backends {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
			err := h.backends[name].Ping(pingCtx)
			cancel()

			if err != nil {
				states[name] = "down"
				status = "degraded"
			} else {
				states[name] = "up"
			}
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Backends:  states,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
