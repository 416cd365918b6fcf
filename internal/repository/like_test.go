package repository

import (
	"context"
	"errors"
	"testing"

	"lumen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedImage(t *testing.T, db *gorm.DB) *models.Image {
	t.Helper()
	image := &models.Image{Title: "T", Description: "d", CreatorID: "creator"}
	require.NoError(t, db.Create(image).Error)
	return image
}

func TestLikeRepository_Toggle_LikeThenUnlike(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	image := seedImage(t, db)

	liked, count, err := repo.Toggle(ctx, image.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = repo.Toggle(ctx, image.ID, "user-1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)
}

func TestLikeRepository_Toggle_KeepsCounterConsistent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	image := seedImage(t, db)

	_, _, err := repo.Toggle(ctx, image.ID, "user-1")
	require.NoError(t, err)
	_, count, err := repo.Toggle(ctx, image.ID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var stored models.Image
	require.NoError(t, db.First(&stored, image.ID).Error)

	var likes int64
	require.NoError(t, db.Model(&models.Like{}).Where("image_id = ?", image.ID).Count(&likes).Error)
	assert.Equal(t, int(likes), stored.LikeCount, "denormalized counter must match the likes table")

	_, count, err = repo.Toggle(ctx, image.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, db.First(&stored, image.ID).Error)
	assert.Equal(t, 1, stored.LikeCount)
}

func TestLikeRepository_Toggle_MissingImage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)

	_, _, err := repo.Toggle(context.Background(), 9999, "user-1")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestLikeRepository_Toggle_IndependentUsers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	image := seedImage(t, db)

	_, _, err := repo.Toggle(ctx, image.ID, "user-1")
	require.NoError(t, err)
	_, _, err = repo.Toggle(ctx, image.ID, "user-2")
	require.NoError(t, err)

	// user-1 unliking must not affect user-2's like.
	liked, count, err := repo.Toggle(ctx, image.ID, "user-1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 1, count)

	isLiked, err := repo.IsLiked(ctx, image.ID, "user-2")
	require.NoError(t, err)
	assert.True(t, isLiked)
}

func TestLikeRepository_IsLiked(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	image := seedImage(t, db)

	liked, err := repo.IsLiked(ctx, image.ID, "user-1")
	require.NoError(t, err)
	assert.False(t, liked)

	_, _, err = repo.Toggle(ctx, image.ID, "user-1")
	require.NoError(t, err)

	liked, err = repo.IsLiked(ctx, image.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestLikeRepository_GetLikedImageIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	first := seedImage(t, db)
	second := seedImage(t, db)
	third := seedImage(t, db)

	_, _, err := repo.Toggle(ctx, first.ID, "user-1")
	require.NoError(t, err)
	_, _, err = repo.Toggle(ctx, third.ID, "user-1")
	require.NoError(t, err)

	ids, err := repo.GetLikedImageIDs(ctx, "user-1", []uint{first.ID, second.ID, third.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{first.ID, third.ID}, ids)

	ids, err = repo.GetLikedImageIDs(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestLikeRepository_UniqueConstraint(t *testing.T) {
	db := setupTestDB(t)
	image := seedImage(t, db)

	require.NoError(t, db.Create(&models.Like{ImageID: image.ID, UserID: "user-1"}).Error)
	err := db.Create(&models.Like{ImageID: image.ID, UserID: "user-1"}).Error
	assert.Error(t, err, "duplicate (image_id, user_id) must be rejected by the schema")
}
