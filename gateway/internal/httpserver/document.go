package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
	"github.com/Skotchmaster/doc_platform/gateway/internal/search"
	"github.com/Skotchmaster/doc_platform/gateway/internal/service"
	"github.com/Skotchmaster/doc_platform/gateway/internal/transport"
	"github.com/Skotchmaster/doc_platform/gateway/internal/util"
	"github.com/Skotchmaster/doc_platform/pkg/logging"
)

type DocumentHTTP struct {
	Svc *service.DocumentService
}

func documentResponse(d models.Document) transport.DocumentResponse {
	return transport.DocumentResponse{
		ID:           d.ID,
		OriginalName: d.OriginalName,
		MimeType:     d.MimeType,
		Size:         d.Size,
		UploadedAt:   d.UploadedAt,
	}
}

func (h *DocumentHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "document_create")

	form, err := c.MultipartForm()
	if err != nil {
		l.Warn("document_create_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form with files is required")
	}

	docs, err := h.Svc.Upload(ctx, form.File["files"])
	if err != nil {
		l.Warn("document_create_failed", "error", err)
		return httpError(err)
	}

	out := make([]transport.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResponse(d))
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *DocumentHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	doc, f, err := h.Svc.Open(ctx, id)
	if err != nil {
		return httpError(err)
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.OriginalName))
	return c.Stream(http.StatusOK, doc.MimeType, f)
}

func (h *DocumentHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "document_update")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("files")
	if err != nil {
		l.Warn("document_update_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	doc, err := h.Svc.Replace(ctx, id, fh)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, documentResponse(*doc))
}

func (h *DocumentHTTP) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DocumentHTTP) List(c echo.Context) error {
	page := util.NewPage(queryInt(c, "page", 1), queryInt(c, "size", util.DefaultPageSize))

	total, docs, err := h.Svc.List(c.Request().Context(), page)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.PageResponse[service.DocumentView]{
		Total: total, Page: page.Number, Size: page.Size, Pages: page.Pages(total), Items: docs,
	})
}

func (h *DocumentHTTP) Search(c echo.Context) error {
	page := util.NewPage(queryInt(c, "page", 1), queryInt(c, "size", util.DefaultPageSize))

	total, hits, err := h.Svc.Search(c.Request().Context(), c.QueryParam("q"), page)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.PageResponse[search.Hit]{
		Total: total, Page: page.Number, Size: page.Size, Pages: page.Pages(total), Items: hits,
	})
}
