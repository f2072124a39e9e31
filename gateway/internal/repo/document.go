package repo

import (
	"context"

	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
)

func (r *GormRepo) CreateDocument(ctx context.Context, d *models.Document) error {
	return translate(r.DB.WithContext(ctx).Create(d).Error)
}

func (r *GormRepo) GetDocument(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := r.DB.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func (r *GormRepo) ListDocuments(ctx context.Context, offset, limit int) (int64, []models.Document, error) {
	var total int64
	db := r.DB.WithContext(ctx).Model(&models.Document{})
	if err := db.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var docs []models.Document
	err := r.DB.WithContext(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return 0, nil, err
	}
	return total, docs, nil
}

func (r *GormRepo) UpdateDocument(ctx context.Context, d *models.Document) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Document{ID: d.ID}).
		Updates(map[string]any{
			"original_name": d.OriginalName,
			"name":          d.Name,
			"mime_type":     d.MimeType,
			"size":          d.Size,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteDocument(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Document{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
