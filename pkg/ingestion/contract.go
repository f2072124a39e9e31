// Package ingestion holds the message patterns and payloads exchanged
// between the gateway and the ingestion worker.
package ingestion

import "time"

const (
	PatternAdd = "add.ingestion"
	PatternGet = "get.ingestion"

	EventProcessed = "ingestion_processed"
)

// Remote error messages the gateway translates back into HTTP statuses.
const (
	MsgNotFound      = "ingestion not found"
	MsgAlreadyExists = "document is already ingested"
	MsgInvalid       = "invalid ingestion request"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

type AddRequest struct {
	UserID     uint `json:"userId"`
	DocumentID uint `json:"documentId"`
}

type GetRequest struct {
	ID uint `json:"id"`
}

type Record struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"userId"`
	DocumentID uint      `json:"documentId"`
	Status     Status    `json:"status"`
	IngestedAt time.Time `json:"ingestedAt"`
}

type Reply struct {
	Message   string `json:"message"`
	Ingestion Record `json:"ingestion"`
}
