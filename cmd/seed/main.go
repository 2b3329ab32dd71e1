// Command main seeds a development database with demo users and posts.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"moodfeed/internal/config"
	"moodfeed/internal/database"
	"moodfeed/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Delete existing users and posts first")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	fast := flag.Bool("fast", false, "Skip bcrypt; seeded accounts cannot log in")
	edited := flag.Float64("edited", 0.2, "Share of posts marked as edited")
	deleted := flag.Float64("deleted", 0.05, "Share of posts soft-deleted")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v dry-run=%v", *numUsers, *numPosts, *shouldClean, *dryRun)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Ignoring unreadable .env: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	s, err := seed.NewSeeder(db, seed.Options{
		DryRun:       *dryRun,
		SkipBcrypt:   *fast,
		EditedRatio:  *edited,
		DeletedRatio: *deleted,
	})
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	summary, err := s.Run(ctx, *numUsers, *numPosts)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Seeded %d users and %d posts (%d soft-deleted)", summary.Users, summary.Posts, summary.DeletedPosts)
	for emoji, n := range summary.EmojiCounts {
		log.Printf("  %s × %d", emoji, n)
	}
	if !*fast {
		log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
	}
}
