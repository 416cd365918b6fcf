package repository

import (
	"context"
	"errors"

	"lumen/internal/cache"
	"lumen/internal/middleware"
	"lumen/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	IsLiked(ctx context.Context, imageID uint, userID string) (bool, error)
	GetLikedImageIDs(ctx context.Context, userID string, imageIDs []uint) ([]uint, error)
	Toggle(ctx context.Context, imageID uint, userID string) (liked bool, likeCount int, err error)
}

// likeRepository implements LikeRepository
type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) IsLiked(ctx context.Context, imageID uint, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("image_id = ? AND user_id = ?", imageID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *likeRepository) GetLikedImageIDs(ctx context.Context, userID string, imageIDs []uint) ([]uint, error) {
	if len(imageIDs) == 0 {
		return nil, nil
	}
	var likedImageIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND image_id IN ?", userID, imageIDs).
		Pluck("image_id", &likedImageIDs).Error
	return likedImageIDs, err
}

// Toggle flips the like state of one user on one image and returns the new
// state plus the resulting counter. The whole flip runs in one transaction:
// the image row is locked on postgres so concurrent toggles on the same image
// serialize, the (image_id, user_id) unique constraint is the final guard
// against duplicate inserts, and the counter is recomputed from the likes
// table before commit so it always matches COUNT(*).
func (r *likeRepository) Toggle(ctx context.Context, imageID uint, userID string) (liked bool, likeCount int, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var image models.Image
		query := tx
		if tx.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.First(&image, imageID).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Like{}).
			Where("image_id = ? AND user_id = ?", imageID, userID).
			Count(&existing).Error; err != nil {
			return err
		}

		if existing > 0 {
			if err := tx.Where("image_id = ? AND user_id = ?", imageID, userID).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
			liked = false
		} else {
			like := models.Like{ImageID: imageID, UserID: userID}
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
			if err != nil && !isUniqueViolation(err) {
				return err
			}
			liked = true
		}

		var total int64
		if err := tx.Model(&models.Like{}).
			Where("image_id = ?", imageID).
			Count(&total).Error; err != nil {
			return err
		}
		likeCount = int(total)

		return tx.Model(&models.Image{}).
			Where("id = ?", imageID).
			Update("like_count", likeCount).Error
	})
	if err != nil {
		return false, 0, err
	}

	state := "unliked"
	if liked {
		state = "liked"
	}
	middleware.LikeToggles.WithLabelValues(state).Inc()

	cache.InvalidateImage(ctx, imageID)
	cache.InvalidateImagesList(ctx)
	return liked, likeCount, nil
}

// isUniqueViolation reports whether err is a postgres duplicate-key error
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
