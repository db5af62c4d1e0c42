package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	service string
	version string
}

func NewHandler(service, version string) *Handler {
	return &Handler{service: service, version: version}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Index lists the public entry points.
func (h *Handler) Index(c echo.Context) error {
	return ok(c, http.StatusOK, "", map[string]any{
		"service": h.service,
		"version": h.version,
		"endpoints": map[string]string{
			"health":       "/api/health",
			"auth":         "/api/auth",
			"applications": "/api/applications",
			"track":        "/api/applications/track/:applicationNumber",
			"auditLogs":    "/api/audit-logs",
			"metrics":      "/metrics",
		},
	})
}
