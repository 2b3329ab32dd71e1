package seed

import (
	"context"
	"fmt"
	"log/slog"

	"moodfeed/internal/middleware"
	"moodfeed/internal/models"

	"gorm.io/gorm"
)

const batchSize = 100

// Summary counts what a run wrote.
type Summary struct {
	Users        int
	Posts        int
	DeletedPosts int
	EmojiCounts  map[string]int
}

// Seeder writes generated data through a gorm handle.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder returns a seeder writing to db. db may be nil in DryRun mode.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	if db == nil && !opts.DryRun {
		return nil, fmt.Errorf("seed: database handle required unless DryRun is set")
	}
	f, err := NewFactory(opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: f, opts: opts}, nil
}

// ClearAll removes every post and user.
func (s *Seeder) ClearAll(ctx context.Context) error {
	if s.opts.DryRun {
		middleware.Logger.InfoContext(ctx, "[dry-run] skipping cleanup")
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error; err != nil {
			return fmt.Errorf("clear posts: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("clear users: %w", err)
		}
		return nil
	})
}

// SeedUsers creates n users.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, s.factory.BuildUser(i+1))
	}
	if s.opts.DryRun || len(users) == 0 {
		return users, nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(users, batchSize).Error; err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	return users, nil
}

// SeedPosts creates n posts spread round-robin over users.
func (s *Seeder) SeedPosts(ctx context.Context, users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		if n == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("seed posts: no users to own them")
	}
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, s.factory.BuildPost(users[i%len(users)]))
	}
	if s.opts.DryRun || len(posts) == 0 {
		return posts, nil
	}
	if err := s.db.WithContext(ctx).Omit("OwnerUser").CreateInBatches(posts, batchSize).Error; err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	return posts, nil
}

// Run seeds numUsers users and numPosts posts.
func (s *Seeder) Run(ctx context.Context, numUsers, numPosts int) (*Summary, error) {
	users, err := s.SeedUsers(ctx, numUsers)
	if err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "seeded users", slog.Int("count", len(users)))

	posts, err := s.SeedPosts(ctx, users, numPosts)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Users: len(users), Posts: len(posts), EmojiCounts: map[string]int{}}
	for _, p := range posts {
		summary.EmojiCounts[p.FeelingEmoji]++
		if p.IsDeleted {
			summary.DeletedPosts++
		}
	}
	middleware.Logger.InfoContext(ctx, "seeded posts",
		slog.Int("count", summary.Posts),
		slog.Int("deleted", summary.DeletedPosts),
		slog.Int("distinct_emoji", len(summary.EmojiCounts)),
	)
	return summary, nil
}
