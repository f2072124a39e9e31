package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
	"github.com/Skotchmaster/doc_platform/gateway/internal/repo"
	"github.com/Skotchmaster/doc_platform/gateway/internal/search"
	"github.com/Skotchmaster/doc_platform/gateway/internal/storage"
	"github.com/Skotchmaster/doc_platform/gateway/internal/util"
	"github.com/Skotchmaster/doc_platform/pkg/events"
	"github.com/Skotchmaster/doc_platform/pkg/logging"
)

type DocumentStore interface {
	CreateDocument(ctx context.Context, d *models.Document) error
	GetDocument(ctx context.Context, id uint) (*models.Document, error)
	ListDocuments(ctx context.Context, offset, limit int) (int64, []models.Document, error)
	UpdateDocument(ctx context.Context, d *models.Document) error
	DeleteDocument(ctx context.Context, id uint) error
}

type FileStore interface {
	Save(name string, r io.Reader) (int64, error)
	Open(name string) (*os.File, error)
	Remove(name string) error
}

type DocumentIndex interface {
	IndexDocument(ctx context.Context, d *models.Document) error
	DeleteDocument(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []search.Hit, error)
}

type DocumentService struct {
	Repo  DocumentStore
	Files FileStore
	// Index is optional; search is disabled without it.
	Index  DocumentIndex
	Events events.Publisher
}

type DocumentView struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Size       string    `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (s *DocumentService) store(fh *multipart.FileHeader) (*models.Document, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s", ErrValidation, fh.Filename)
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(fh.Filename)
	size, err := s.Files.Save(name, src)
	if errors.Is(err, storage.ErrTooLarge) {
		return nil, fmt.Errorf("%w: %s exceeds the upload limit", ErrValidation, fh.Filename)
	}
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", fh.Filename, err)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &models.Document{
		OriginalName: filepath.Base(fh.Filename),
		Name:         name,
		MimeType:     mimeType,
		Size:         size,
	}, nil
}

func (s *DocumentService) Upload(ctx context.Context, files []*multipart.FileHeader) ([]models.Document, error) {
	l := logging.FromContext(ctx).With("svc", "document.upload")
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files", ErrValidation)
	}

	out := make([]models.Document, 0, len(files))
	for _, fh := range files {
		doc, err := s.store(fh)
		if err != nil {
			return out, err
		}
		if err := s.Repo.CreateDocument(ctx, doc); err != nil {
			_ = s.Files.Remove(doc.Name)
			return out, fmt.Errorf("save document: %w", err)
		}
		s.indexDocument(ctx, doc)
		s.emit(ctx, doc.ID, "document_created")
		l.Info("document_uploaded", "document_id", doc.ID, "size", doc.Size)
		out = append(out, *doc)
	}
	return out, nil
}

func (s *DocumentService) get(ctx context.Context, id uint) (*models.Document, error) {
	doc, err := s.Repo.GetDocument(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: document %d", ErrNotFound, id)
	}
	return doc, err
}

// Open returns the document metadata and its stored file. The caller closes the file.
func (s *DocumentService) Open(ctx context.Context, id uint) (*models.Document, *os.File, error) {
	doc, err := s.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.Files.Open(doc.Name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: file of document %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, nil, err
	}
	return doc, f, nil
}

// Replace swaps the stored file of an existing document.
func (s *DocumentService) Replace(ctx context.Context, id uint, fh *multipart.FileHeader) (*models.Document, error) {
	old, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.store(fh)
	if err != nil {
		return nil, err
	}
	doc.ID = old.ID
	doc.UploadedAt = old.UploadedAt
	if err := s.Repo.UpdateDocument(ctx, doc); err != nil {
		_ = s.Files.Remove(doc.Name)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %d", ErrNotFound, id)
		}
		return nil, err
	}
	if err := s.Files.Remove(old.Name); err != nil {
		logging.FromContext(ctx).Warn("document_file_cleanup_failed", "document_id", id, "error", err)
	}
	s.indexDocument(ctx, doc)
	s.emit(ctx, doc.ID, "document_updated")
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, id uint) error {
	doc, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: document %d", ErrNotFound, id)
		}
		return err
	}
	if err := s.Files.Remove(doc.Name); err != nil {
		logging.FromContext(ctx).Warn("document_file_cleanup_failed", "document_id", id, "error", err)
	}
	if s.Index != nil {
		if err := s.Index.DeleteDocument(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("document_unindex_failed", "document_id", id, "error", err)
		}
	}
	s.emit(ctx, id, "document_deleted")
	return nil
}

func (s *DocumentService) List(ctx context.Context, page util.Page) (int64, []DocumentView, error) {
	total, docs, err := s.Repo.ListDocuments(ctx, page.Offset(), page.Limit())
	if err != nil {
		return 0, nil, err
	}
	out := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentView{
			ID:         d.ID,
			Name:       d.OriginalName,
			Size:       humanize.Bytes(uint64(d.Size)),
			UploadedAt: d.UploadedAt,
		})
	}
	return total, out, nil
}

func (s *DocumentService) Search(ctx context.Context, query string, page util.Page) (int64, []search.Hit, error) {
	if s.Index == nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrDisabled, search.ErrDisabled)
	}
	if query == "" {
		return 0, nil, fmt.Errorf("%w: empty query", ErrValidation)
	}
	return s.Index.Search(ctx, query, page.Offset(), page.Limit())
}

func (s *DocumentService) indexDocument(ctx context.Context, doc *models.Document) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexDocument(ctx, doc); err != nil {
		logging.FromContext(ctx).Warn("document_index_failed", "document_id", doc.ID, "error", err)
	}
}

func (s *DocumentService) emit(ctx context.Context, id uint, typ string) {
	if s.Events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()
	ev := events.NewEvent(typ, map[string]any{"documentId": id})
	if err := s.Events.PublishEvent(pctx, events.TopicDocuments, fmt.Sprint(id), ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", typ, "error", err)
	}
}
