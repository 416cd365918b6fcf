// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"lumen/internal/cache"
	"lumen/internal/models"

	"gorm.io/gorm"
)

// DefaultListLimit is the page size used by the public gallery listing.
const DefaultListLimit = 50

// ImageRepository defines the interface for image data operations
type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, id uint) (*models.Image, error)
	GetWithLikes(ctx context.Context, id uint) (*models.Image, error)
	List(ctx context.Context, limit, offset int) ([]*models.Image, error)
	Update(ctx context.Context, image *models.Image) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
}

// imageRepository implements ImageRepository
type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new image repository
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *models.Image) error {
	err := r.db.WithContext(ctx).Create(image).Error
	if err == nil {
		cache.InvalidateImagesList(ctx)
	}
	return err
}

func (r *imageRepository) GetByID(ctx context.Context, id uint) (*models.Image, error) {
	var image models.Image
	err := cache.Aside(ctx, cache.ImageKey(id), &image, cache.ImageTTL, func() error {
		return r.db.WithContext(ctx).First(&image, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) GetWithLikes(ctx context.Context, id uint) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).
		Preload("Likes").
		First(&image, id).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) List(ctx context.Context, limit, offset int) ([]*models.Image, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var images []*models.Image
	fetch := func() error {
		return r.db.WithContext(ctx).
			Preload("Likes").
			Order("created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&images).Error
	}

	// Only the default first page is cached; other pages go to the database.
	if offset == 0 && limit == DefaultListLimit {
		if err := cache.Aside(ctx, cache.ImagesListKey, &images, cache.ImagesListTTL, fetch); err != nil {
			return nil, err
		}
		return images, nil
	}

	if err := fetch(); err != nil {
		return nil, err
	}
	return images, nil
}

func (r *imageRepository) Update(ctx context.Context, image *models.Image) error {
	result := r.db.WithContext(ctx).Save(image)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateImage(ctx, image.ID)
	cache.InvalidateImagesList(ctx)
	return nil
}

// Delete removes an image and its likes in one transaction. The explicit like
// delete keeps cascade semantics identical across postgres and the sqlite test
// database.
func (r *imageRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Image{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == nil {
		cache.InvalidateImage(ctx, id)
		cache.InvalidateImagesList(ctx)
	}
	return err
}

func (r *imageRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
