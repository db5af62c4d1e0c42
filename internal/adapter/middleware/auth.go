package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/GopalDev98/creditcard-backend/internal/domain/apperr"
	"github.com/GopalDev98/creditcard-backend/internal/domain/application"
	"github.com/GopalDev98/creditcard-backend/internal/domain/user"
)

const actorKey = "actor"

// Authenticator turns a bearer token into the caller it was issued to.
type Authenticator interface {
	Authenticate(token string) (*application.Actor, error)
}

// Authenticate rejects requests without a valid bearer token.
func Authenticate(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				return apperr.Unauthenticated("No token provided")
			}
			actor, err := a.Authenticate(token)
			if err != nil {
				return err
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// OptionalAuth attaches the caller when a valid token is present and otherwise
// continues anonymously.
func OptionalAuth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c); ok {
				if actor, err := a.Authenticate(token); err == nil {
					c.Set(actorKey, actor)
				}
			}
			return next(c)
		}
	}
}

// RequireRole must run after Authenticate.
func RequireRole(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := ActorFrom(c)
			if actor == nil {
				return apperr.Unauthenticated("Authentication required")
			}
			for _, r := range roles {
				if actor.Role == r {
					return next(c)
				}
			}
			return apperr.Forbidden("Insufficient permissions")
		}
	}
}

// ActorFrom returns the authenticated caller, or nil for anonymous requests.
func ActorFrom(c echo.Context) *application.Actor {
	a, _ := c.Get(actorKey).(*application.Actor)
	return a
}

func ClientMeta(c echo.Context) application.ClientMeta {
	return application.ClientMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

func bearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
