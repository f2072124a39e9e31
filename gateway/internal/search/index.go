package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
)

const DefaultIndex = "documents"

var ErrDisabled = errors.New("document search is not configured")

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
}

// Hit is the indexed view of a document.
type Hit struct {
	ID           uint      `json:"id"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// Index keeps document metadata searchable in Elasticsearch.
type Index struct {
	es    *elasticsearch.Client
	index string
}

func NewIndex(es *elasticsearch.Client, index string) *Index {
	if index == "" {
		index = DefaultIndex
	}
	return &Index{es: es, index: index}
}

func (i *Index) IndexDocument(ctx context.Context, d *models.Document) error {
	body, err := json.Marshal(Hit{
		ID:           d.ID,
		OriginalName: d.OriginalName,
		MimeType:     d.MimeType,
		Size:         d.Size,
		UploadedAt:   d.UploadedAt,
	})
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	res, err := i.es.Index(i.index, bytes.NewReader(body),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(strconv.FormatUint(uint64(d.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index document: %s", res.Status())
	}
	return nil
}

func (i *Index) DeleteDocument(ctx context.Context, id uint) error {
	res, err := i.es.Delete(i.index, strconv.FormatUint(uint64(id), 10),
		i.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete document: %s", res.Status())
	}
	return nil
}

func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []Hit, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"originalName^2", "mimeType"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return 0, nil, fmt.Errorf("search: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Hit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]Hit, len(r.Hits.Hits))
	for n, h := range r.Hits.Hits {
		hits[n] = h.Source
	}
	return r.Hits.Total.Value, hits, nil
}
