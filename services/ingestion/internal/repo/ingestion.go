package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/doc_platform/pkg/ingestion"
	"github.com/Skotchmaster/doc_platform/services/ingestion/internal/models"
)

var (
	ErrNotFound      = errors.New("ingestion not found")
	ErrAlreadyExists = errors.New("ingestion already exists")
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(&models.Ingestion{})
}

func (r *GormRepo) Create(ctx context.Context, in *models.Ingestion) error {
	err := r.DB.WithContext(ctx).Create(in).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

func (r *GormRepo) Get(ctx context.Context, id uint) (*models.Ingestion, error) {
	var in models.Ingestion
	if err := r.DB.WithContext(ctx).First(&in, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &in, nil
}

func (r *GormRepo) ExistsForDocument(ctx context.Context, documentID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.Ingestion{}).
		Where("document_id = ?", documentID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) UpdateStatus(ctx context.Context, id uint, status ingestion.Status) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Ingestion{ID: id}).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
