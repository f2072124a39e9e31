package models

import (
	"time"

	"github.com/Skotchmaster/doc_platform/pkg/ingestion"
)

type Ingestion struct {
	ID         uint             `gorm:"primaryKey;autoIncrement"            json:"id"`
	DocumentID uint             `gorm:"uniqueIndex;not null"                json:"documentId"`
	UserID     uint             `gorm:"index;not null"                      json:"userId"`
	Status     ingestion.Status `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	IngestedAt time.Time        `gorm:"autoCreateTime"                      json:"ingestedAt"`
}

func (i *Ingestion) Record() ingestion.Record {
	return ingestion.Record{
		ID:         i.ID,
		UserID:     i.UserID,
		DocumentID: i.DocumentID,
		Status:     i.Status,
		IngestedAt: i.IngestedAt,
	}
}
