package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_platform/gateway/internal/authn"
	"github.com/Skotchmaster/doc_platform/gateway/internal/service"
	"github.com/Skotchmaster/doc_platform/gateway/internal/transport"
	"github.com/Skotchmaster/doc_platform/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := bindValid(c, &req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleID:    req.RoleID,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, transport.RegisterResponse{
		ID:          res.User.ID,
		Email:       res.User.Email,
		AccessToken: res.Token,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := bindValid(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return err
	}

	token, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.TokenResponse{AccessToken: token})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	token, ok := authn.TokenFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	if err := h.Svc.Logout(ctx, token); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged out"})
}
