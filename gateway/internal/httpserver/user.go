package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_platform/gateway/internal/service"
	"github.com/Skotchmaster/doc_platform/pkg/logging"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_users_failed", "status", 500, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}
