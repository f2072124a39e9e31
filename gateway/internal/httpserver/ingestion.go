package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_platform/gateway/internal/service"
	"github.com/Skotchmaster/doc_platform/gateway/internal/transport"
)

type IngestionHTTP struct {
	Svc *service.IngestionService
}

func (h *IngestionHTTP) Create(c echo.Context) error {
	var req transport.IngestionRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	reply, err := h.Svc.Add(c.Request().Context(), req.DocumentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, reply)
}

func (h *IngestionHTTP) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	view, err := h.Svc.Find(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}
