package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/doc_platform/gateway/internal/ability"
	"github.com/Skotchmaster/doc_platform/gateway/internal/authn"
	"github.com/Skotchmaster/doc_platform/gateway/internal/authz"
	"github.com/Skotchmaster/doc_platform/gateway/internal/metrics"
	"github.com/Skotchmaster/doc_platform/pkg/logging"
)

// Authenticate resolves the bearer token and scopes the identity to the
// request context. Every failure is a bare 401.
func Authenticate(resolver *authn.Resolver, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx)

			user, token, err := resolver.AuthenticateHeader(ctx, c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				reason := "error"
				var ae *authn.AuthError
				if errors.As(err, &ae) {
					reason = string(ae.Reason)
				}
				m.ObserveAuthentication(reason)
				l.Warn("authentication_failed", "status", 401, "reason", reason, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			m.ObserveAuthentication("resolved")

			ctx = authn.WithIdentity(ctx, user, token)
			ctx = logging.IntoContext(ctx, l.With("user_id", user.ID))
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// Authorize enforces the requirements declared for op. It panics when op is
// not declared, so a missing policy fails at startup rather than per request.
func Authorize(gate *authz.Gate, policies authz.Policies, op string, m *metrics.Metrics) echo.MiddlewareFunc {
	reqs, ok := policies.For(op)
	if !ok {
		panic(fmt.Sprintf("authorization policy for %q is not declared", op))
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("operation", op)

			allowed, err := gate.AuthorizeRequest(ctx, reqs)
			switch {
			case errors.Is(err, authz.ErrUnauthenticated):
				m.ObserveAuthorization(op, "unauthenticated")
				l.Warn("authorization_failed", "status", 401, "reason", "no identity")
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			case errors.Is(err, ability.ErrIdentityNotFound):
				m.ObserveAuthorization(op, "denied")
				l.Warn("authorization_failed", "status", 403, "reason", "identity vanished")
				return echo.NewHTTPError(http.StatusForbidden, "User not found")
			case err != nil:
				m.ObserveAuthorization(op, "error")
				l.Error("authorization_failed", "status", 500, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
			case !allowed:
				m.ObserveAuthorization(op, "denied")
				l.Warn("authorization_failed", "status", 403, "reason", "missing permission")
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden resource")
			}
			m.ObserveAuthorization(op, "allowed")
			return next(c)
		}
	}
}

// RateLimit throttles per client ip.
func RateLimit(perSecond float64, burst int) echo.MiddlewareFunc {
	store := ecM.NewRateLimiterMemoryStoreWithConfig(ecM.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return ecM.RateLimiterWithConfig(ecM.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
		},
	})
}
