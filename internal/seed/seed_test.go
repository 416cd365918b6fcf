package seed

import (
	"strings"
	"testing"
	"time"

	"lumen/internal/database"
	"lumen/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPromptTitle_Format(t *testing.T) {
	s := NewSeeder(nil, Options{})
	title := s.promptTitle()
	if !strings.HasPrefix(title, "A ") {
		t.Fatalf("unexpected title format: %s", title)
	}
	if len(title) > 100 {
		t.Fatalf("title exceeds column size: %d chars", len(title))
	}
}

func TestRun_CountersMatchLikeRows(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db, Options{
		NumCreators:      8,
		NumImages:        20,
		MaxLikesPerImage: 5,
		MaxDays:          30,
	})

	if err := s.Run(); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	var images []models.Image
	if err := db.Find(&images).Error; err != nil {
		t.Fatalf("load images: %v", err)
	}
	if len(images) != 20 {
		t.Fatalf("expected 20 images, got %d", len(images))
	}

	for _, image := range images {
		var likes int64
		if err := db.Model(&models.Like{}).Where("image_id = ?", image.ID).Count(&likes).Error; err != nil {
			t.Fatalf("count likes: %v", err)
		}
		if int64(image.LikeCount) != likes {
			t.Fatalf("image %d counter %d does not match %d like rows", image.ID, image.LikeCount, likes)
		}
		if time.Since(image.CreatedAt) > 32*24*time.Hour {
			t.Fatalf("image %d created_at too old: %v", image.ID, image.CreatedAt)
		}
	}
}

func TestClearAll_RemovesEverything(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db, Options{NumCreators: 3, NumImages: 5, MaxLikesPerImage: 2})
	if err := s.Run(); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	if err := s.ClearAll(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	var images, likes int64
	db.Model(&models.Image{}).Count(&images)
	db.Model(&models.Like{}).Count(&likes)
	if images != 0 || likes != 0 {
		t.Fatalf("expected empty tables, got %d images and %d likes", images, likes)
	}
}
