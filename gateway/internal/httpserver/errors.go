package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_platform/gateway/internal/service"
	"github.com/Skotchmaster/doc_platform/pkg/mq"
)

// statusOf maps service errors to an HTTP status and a client-safe message.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUserExists):
		return http.StatusBadRequest, service.ErrUserExists.Error()
	case errors.Is(err, service.ErrLoginFailed):
		return http.StatusBadRequest, service.ErrLoginFailed.Error()
	case errors.Is(err, service.ErrIncorrectPassword):
		return http.StatusBadRequest, service.ErrIncorrectPassword.Error()
	case errors.Is(err, service.ErrLogoutFailed):
		return http.StatusInternalServerError, service.ErrLogoutFailed.Error()
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "Conflict"
	case errors.Is(err, service.ErrDisabled):
		return http.StatusServiceUnavailable, "Service unavailable"
	case errors.Is(err, mq.ErrTimeout):
		return http.StatusGatewayTimeout, "Ingestion service did not respond"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func httpError(err error) *echo.HTTPError {
	code, msg := statusOf(err)
	return echo.NewHTTPError(code, msg)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return v
}
