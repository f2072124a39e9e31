package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_platform/gateway/internal/authn"
	"github.com/Skotchmaster/doc_platform/gateway/internal/authz"
	"github.com/Skotchmaster/doc_platform/gateway/internal/metrics"
	"github.com/Skotchmaster/doc_platform/gateway/internal/middleware"
	"github.com/Skotchmaster/doc_platform/gateway/internal/transport"
)

type Deps struct {
	Logger *slog.Logger

	AuthHandler      *AuthHTTP
	UserHandler      *UserHTTP
	DocumentHandler  *DocumentHTTP
	IngestionHandler *IngestionHTTP

	Resolver *authn.Resolver
	Gate     *authz.Gate
	Policies authz.Policies
	Metrics  *metrics.Metrics

	LoginRatePerSecond float64
	// Ready reports whether the backing stores answer.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = transport.NewValidator()
	for _, m := range middleware.Common(d.Logger) {
		e.Use(m)
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))

	policies := d.Policies
	if policies == nil {
		policies = authz.DefaultPolicies()
	}
	authMw := middleware.Authenticate(d.Resolver, d.Metrics)
	can := func(op string) echo.MiddlewareFunc {
		return middleware.Authorize(d.Gate, policies, op, d.Metrics)
	}

	user := e.Group("/user")
	user.POST("/register", d.AuthHandler.Register)
	if d.LoginRatePerSecond > 0 {
		user.POST("/login", d.AuthHandler.Login, middleware.RateLimit(d.LoginRatePerSecond, 5))
	} else {
		user.POST("/login", d.AuthHandler.Login)
	}
	user.POST("/logout", d.AuthHandler.Logout, authMw, can(authz.OpUserLogout))
	user.GET("", d.UserHandler.List, authMw, can(authz.OpUserList))

	docs := e.Group("/document", authMw)
	docs.POST("", d.DocumentHandler.Create, can(authz.OpDocumentCreate))
	docs.GET("", d.DocumentHandler.List, can(authz.OpDocumentList))
	docs.GET("/search", d.DocumentHandler.Search, can(authz.OpDocumentSearch))
	docs.GET("/:id", d.DocumentHandler.Get, can(authz.OpDocumentGet))
	docs.PUT("/:id", d.DocumentHandler.Update, can(authz.OpDocumentUpdate))
	docs.DELETE("/:id", d.DocumentHandler.Delete, can(authz.OpDocumentDelete))

	ing := e.Group("/ingestion", authMw)
	ing.POST("", d.IngestionHandler.Create, can(authz.OpIngestionCreate))
	ing.GET("/:id", d.IngestionHandler.Get, can(authz.OpIngestionGet))
}
