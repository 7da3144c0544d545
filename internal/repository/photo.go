package repository

import (
	"context"
	"errors"

	"bucketlist/internal/models"

	"gorm.io/gorm"
)

// PhotoRepository defines persistence operations for photo metadata.
type PhotoRepository interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id uint) (*models.Photo, error)
	GetBySalt(ctx context.Context, salt string) (*models.Photo, error)
	GetByItemID(ctx context.Context, itemID uint) (*models.Photo, error)
	Delete(ctx context.Context, id uint) error
}

type photoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository returns a new PhotoRepository implementation.
func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepository{db: db}
}

func (r *photoRepository) Create(ctx context.Context, photo *models.Photo) error {
	if err := r.db.WithContext(ctx).Create(photo).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateKey
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *photoRepository) GetByID(ctx context.Context, id uint) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.WithContext(ctx).First(&photo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Photo", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &photo, nil
}

func (r *photoRepository) GetBySalt(ctx context.Context, salt string) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.WithContext(ctx).Where("salt = ?", salt).First(&photo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &photo, nil
}

func (r *photoRepository) GetByItemID(ctx context.Context, itemID uint) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.WithContext(ctx).Where("item_id = ?", itemID).First(&photo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &photo, nil
}

func (r *photoRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Photo{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
