package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/doc_platform/gateway/internal/authn"
	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
	"github.com/Skotchmaster/doc_platform/gateway/internal/repo"
	"github.com/Skotchmaster/doc_platform/pkg/ingestion"
	"github.com/Skotchmaster/doc_platform/pkg/logging"
	"github.com/Skotchmaster/doc_platform/pkg/mq"
)

type IngestionLookups interface {
	GetDocument(ctx context.Context, id uint) (*models.Document, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

// IngestionService hands documents to the ingestion worker over the queue.
type IngestionService struct {
	MQ      mq.Sender
	Lookups IngestionLookups
}

type IngestionUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type IngestionDocument struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type IngestionView struct {
	ID       uint               `json:"id"`
	User     *IngestionUser     `json:"user"`
	Document *IngestionDocument `json:"document"`
	Status   ingestion.Status   `json:"status"`
}

func remoteErr(err error) error {
	var re *mq.RemoteError
	if !errors.As(err, &re) {
		return err
	}
	switch re.Message {
	case ingestion.MsgNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, re.Message)
	case ingestion.MsgAlreadyExists:
		return fmt.Errorf("%w: %s", ErrConflict, re.Message)
	case ingestion.MsgInvalid:
		return fmt.Errorf("%w: %s", ErrValidation, re.Message)
	}
	return err
}

// Add asks the worker to ingest documentID on behalf of the caller.
func (s *IngestionService) Add(ctx context.Context, documentID uint) (*ingestion.Reply, error) {
	l := logging.FromContext(ctx).With("svc", "ingestion.add")

	user, ok := authn.IdentityFromContext(ctx)
	if !ok {
		return nil, errors.New("no identity in request context")
	}
	if _, err := s.Lookups.GetDocument(ctx, documentID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %d", ErrNotFound, documentID)
		}
		return nil, err
	}

	var reply ingestion.Reply
	req := ingestion.AddRequest{UserID: user.ID, DocumentID: documentID}
	if err := s.MQ.Send(ctx, ingestion.PatternAdd, req, &reply); err != nil {
		l.Warn("ingestion_add_failed", "document_id", documentID, "error", err)
		return nil, remoteErr(err)
	}
	l.Info("ingestion_requested", "ingestion_id", reply.Ingestion.ID, "document_id", documentID)
	return &reply, nil
}

// Find fetches an ingestion from the worker and joins the user and document.
func (s *IngestionService) Find(ctx context.Context, id uint) (*IngestionView, error) {
	var reply ingestion.Reply
	if err := s.MQ.Send(ctx, ingestion.PatternGet, ingestion.GetRequest{ID: id}, &reply); err != nil {
		logging.FromContext(ctx).Warn("ingestion_get_failed", "ingestion_id", id, "error", err)
		return nil, remoteErr(err)
	}
	rec := reply.Ingestion

	view := &IngestionView{ID: rec.ID, Status: rec.Status}
	if u, err := s.Lookups.FindUserByID(ctx, rec.UserID); err == nil {
		view.User = &IngestionUser{ID: u.ID, Name: u.FirstName, Email: u.Email}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if d, err := s.Lookups.GetDocument(ctx, rec.DocumentID); err == nil {
		view.Document = &IngestionDocument{ID: d.ID, Name: d.OriginalName}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	return view, nil
}
