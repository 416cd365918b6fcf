// Command main runs the gallery database seeder.
package main

import (
	"flag"
	"log"

	"lumen/internal/config"
	"lumen/internal/database"
	"lumen/internal/seed"
)

func main() {
	numCreators := flag.Int("creators", 25, "Number of synthetic creators")
	numImages := flag.Int("images", 150, "Number of images to create")
	maxLikes := flag.Int("max-likes", 10, "Maximum likes per image")
	maxDays := flag.Int("max-days", 90, "Spread created_at over the last N days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Gallery Seeder")
	log.Println("=================")
	log.Printf("Target: %d creators, %d images, clean=%v\n", *numCreators, *numImages, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(database.DB, seed.Options{
		NumCreators:      *numCreators,
		NumImages:        *numImages,
		MaxLikesPerImage: *maxLikes,
		MaxDays:          *maxDays,
		ShouldClean:      *shouldClean,
	})
	if err := s.Run(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your gallery is now populated with demo images.")
}
