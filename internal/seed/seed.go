// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"lumen/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumCreators      int
	NumImages        int
	MaxLikesPerImage int
	MaxDays          int
	ShouldClean      bool
}

// Seeder populates the gallery with demo images and likes.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Seeder{db: db, opts: opts, rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

var styles = []string{
	"watercolor painting", "oil painting", "pencil sketch", "digital illustration",
	"isometric render", "pixel art", "photorealistic render", "vaporwave collage",
	"charcoal drawing", "low poly scene", "stained glass window", "ukiyo-e print",
}

var moods = []string{
	"at golden hour", "under neon rain", "in dense fog", "at midnight",
	"in pastel tones", "with dramatic lighting", "in muted colors", "mid-storm",
}

// promptTitle builds a plausible generation-prompt style title.
func (s *Seeder) promptTitle() string {
	subject := gofakeit.NounConcrete()
	style := styles[s.rand.Intn(len(styles))]
	mood := moods[s.rand.Intn(len(moods))]
	return fmt.Sprintf("A %s of a %s %s", style, subject, mood)
}

// Run seeds creators, images and likes, then reconciles like counters.
func (s *Seeder) Run() error {
	log.Printf("🌱 Starting gallery seeding with %d creators and %d images...",
		s.opts.NumCreators, s.opts.NumImages)

	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	creators := s.CreatorIDs(s.opts.NumCreators)

	images, err := s.SeedImages(creators, s.opts.NumImages)
	if err != nil {
		return fmt.Errorf("failed to create images: %w", err)
	}
	log.Printf("✓ %d images created", len(images))

	likes, err := s.SeedLikes(images, creators, s.opts.MaxLikesPerImage)
	if err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("✓ %d likes created", likes)

	if err := s.ReconcileLikeCounts(); err != nil {
		return fmt.Errorf("failed to reconcile like counters: %w", err)
	}

	log.Println("🎉 Gallery seeding completed successfully!")
	return nil
}

// ClearAll removes all seedable rows. Likes go first so the images
// delete never trips the foreign key.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	if s.db.Name() == "postgres" {
		return s.db.Exec(`TRUNCATE TABLE likes, images RESTART IDENTITY CASCADE;`).Error
	}
	if err := s.db.Exec(`DELETE FROM likes;`).Error; err != nil {
		return err
	}
	return s.db.Exec(`DELETE FROM images;`).Error
}

// CreatorIDs generates synthetic identity-provider subjects. Creators are not
// stored locally, so an opaque unique string per creator is all that is needed.
func (s *Seeder) CreatorIDs(count int) []string {
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, "seed|"+uuid.NewString())
	}
	return ids
}

// SeedImages creates count images attributed to random creators, with
// created_at spread over the last MaxDays days.
func (s *Seeder) SeedImages(creators []string, count int) ([]models.Image, error) {
	if len(creators) == 0 {
		return nil, fmt.Errorf("no creators to attribute images to")
	}

	maxDays := s.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}

	images := make([]models.Image, 0, count)
	for i := 0; i < count; i++ {
		age := time.Duration(s.rand.Intn(maxDays))*24*time.Hour +
			time.Duration(s.rand.Intn(24))*time.Hour +
			time.Duration(s.rand.Intn(60))*time.Minute

		image := models.Image{
			Title:       s.promptTitle(),
			Description: gofakeit.Paragraph(1, 2, 8, " "),
			ImagePath:   fmt.Sprintf("/uploads/images/seed-%s.png", uuid.NewString()),
			CreatorID:   creators[s.rand.Intn(len(creators))],
			CreatedAt:   time.Now().Add(-age),
		}

		if err := s.db.Create(&image).Error; err != nil {
			return nil, err
		}
		images = append(images, image)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d images...", i)
		}
	}

	return images, nil
}

// SeedLikes gives each image up to maxPerImage likes from distinct creators.
func (s *Seeder) SeedLikes(images []models.Image, creators []string, maxPerImage int) (int, error) {
	if maxPerImage <= 0 || len(creators) == 0 {
		return 0, nil
	}
	if maxPerImage > len(creators) {
		maxPerImage = len(creators)
	}

	total := 0
	for _, image := range images {
		n := s.rand.Intn(maxPerImage + 1)
		for _, idx := range s.rand.Perm(len(creators))[:n] {
			like := models.Like{ImageID: image.ID, UserID: creators[idx]}
			if err := s.db.Create(&like).Error; err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}

// ReconcileLikeCounts rewrites every denormalized like counter from the
// actual number of like rows.
func (s *Seeder) ReconcileLikeCounts() error {
	return s.db.Exec(`
		UPDATE images
		SET like_count = (SELECT COUNT(*) FROM likes WHERE likes.image_id = images.id)
	`).Error
}
