package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/GopalDev98/creditcard-backend/internal/adapter/middleware"
	"github.com/GopalDev98/creditcard-backend/internal/domain/user"
)

type Deps struct {
	Health       *Handler
	Applications *ApplicationHandler
	Auth         *AuthHandler
	Audit        *AuditHandler

	Authenticator middleware.Authenticator
	// Redis backs idempotent submissions; nil disables them.
	Redis          *redis.Client
	IdempotencyTTL time.Duration
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
}

// Register mounts every route on e. Process-wide middleware (request id, logging,
// rate limiting, CORS) is installed by the caller.
func Register(e *echo.Echo, d Deps) {
	e.GET("/", d.Health.Index)
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api")
	api.GET("/health", d.Health.Health)

	authn := middleware.Authenticate(d.Authenticator)
	adminOnly := middleware.RequireRole(user.RoleAdmin)

	a := api.Group("/auth")
	a.POST("/register", d.Auth.Register)
	a.POST("/login", d.Auth.Login)
	a.POST("/refresh", d.Auth.Refresh)
	a.GET("/me", d.Auth.Me, authn)

	apps := api.Group("/applications")
	apps.POST("", d.Applications.Submit,
		middleware.OptionalAuth(d.Authenticator),
		middleware.Idempotency(d.Redis, d.IdempotencyTTL))
	apps.GET("/track/:applicationNumber", d.Applications.Track)
	apps.GET("/my", d.Applications.ListMine, authn)
	apps.GET("/:id", d.Applications.Get, authn)
	apps.GET("", d.Applications.List, authn, adminOnly)
	apps.PATCH("/:id", d.Applications.UpdateStatus, authn, adminOnly)

	api.GET("/audit-logs", d.Audit.List, authn, adminOnly)
}
