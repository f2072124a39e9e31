package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Skotchmaster/doc_platform/pkg/ingestion"
	"github.com/Skotchmaster/doc_platform/pkg/logging"
	"github.com/Skotchmaster/doc_platform/pkg/mq"
	"github.com/Skotchmaster/doc_platform/services/ingestion/internal/service"
)

// Handlers answers the gateway's ingestion requests.
type Handlers struct {
	Svc *service.IngestionService
	// Background is the lifetime of processing runs started by Add.
	Background context.Context
}

func (h *Handlers) Register(srv *mq.Server) {
	srv.Handle(ingestion.PatternAdd, h.Add)
	srv.Handle(ingestion.PatternGet, h.Get)
}

// remote converts a service error into the message the gateway understands.
func remote(err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return errors.New(ingestion.MsgNotFound)
	case errors.Is(err, service.ErrConflict):
		return errors.New(ingestion.MsgAlreadyExists)
	case errors.Is(err, service.ErrValidation):
		return errors.New(ingestion.MsgInvalid)
	}
	return errors.New("internal error")
}

func (h *Handlers) Add(ctx context.Context, data json.RawMessage) (any, error) {
	l := logging.FromContext(ctx).With("handler", "add_ingestion")

	var req ingestion.AddRequest
	if err := json.Unmarshal(data, &req); err != nil {
		l.Warn("add_ingestion_failed", "reason", "bad payload", "error", err)
		return nil, errors.New(ingestion.MsgInvalid)
	}

	bg := h.Background
	if bg == nil {
		bg = context.Background()
	}
	in, err := h.Svc.Add(ctx, bg, req)
	if err != nil {
		l.Warn("add_ingestion_failed", "error", err)
		return nil, remote(err)
	}
	return ingestion.Reply{Message: "Successfully added", Ingestion: in.Record()}, nil
}

// Get accepts either a bare id or {"id": n}.
func (h *Handlers) Get(ctx context.Context, data json.RawMessage) (any, error) {
	l := logging.FromContext(ctx).With("handler", "get_ingestion")

	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		var req ingestion.GetRequest
		if err := json.Unmarshal(data, &req); err != nil {
			l.Warn("get_ingestion_failed", "reason", "bad payload", "error", err)
			return nil, errors.New(ingestion.MsgInvalid)
		}
		id = req.ID
	}

	in, err := h.Svc.Get(ctx, id)
	if err != nil {
		l.Warn("get_ingestion_failed", "ingestion_id", id, "error", err)
		return nil, remote(err)
	}
	return ingestion.Reply{Message: "Successfully fetched", Ingestion: in.Record()}, nil
}
