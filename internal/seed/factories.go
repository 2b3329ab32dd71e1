// Package seed creates demo users and posts for development databases.
package seed

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"moodfeed/internal/models"
	"moodfeed/internal/sentiment"
	"moodfeed/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "Password123!"

// Options tune generated data.
type Options struct {
	// DryRun builds entities without writing them.
	DryRun bool
	// SkipBcrypt stores the plain password. Accounts cannot log in.
	SkipBcrypt bool
	// MaxDays spreads createdAt over the last MaxDays days. Defaults to 30.
	MaxDays int
	// EditedRatio and DeletedRatio are the shares of edited and soft-deleted posts.
	EditedRatio  float64
	DeletedRatio float64
	// Seed makes generation reproducible when non-zero.
	Seed int64
}

// Factory builds users and posts with gofakeit text and classifier emoji.
type Factory struct {
	opts    Options
	faker   *gofakeit.Faker
	lexicon *sentiment.Lexicon
	now     func() time.Time
	hash    string
}

// NewFactory returns a factory using the default lexicon.
func NewFactory(opts Options) (*Factory, error) {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	f := &Factory{
		opts:    opts,
		faker:   gofakeit.New(seed),
		lexicon: sentiment.DefaultLexicon(),
		now:     time.Now,
		hash:    DefaultPassword,
	}
	if !opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		f.hash = string(hashed)
	}
	return f, nil
}

// BuildUser returns an unsaved user. n keeps usernames unique within a run.
func (f *Factory) BuildUser(n int) *models.User {
	username := usernameFrom(f.faker.Username(), n)
	user := &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     strings.ToLower(username) + "@example.com",
		Password:  f.hash,
		AvatarURL: service.RandomAvatarURL(username),
	}
	user.CreatedAt = f.pastTime()
	user.UpdatedAt = user.CreatedAt
	return user
}

// usernameFrom strips characters usernames may not contain and appends n,
// staying within 20 characters.
func usernameFrom(raw string, n int) string {
	var b strings.Builder
	for _, r := range raw {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
		}
	}
	suffix := fmt.Sprintf("_%d", n)
	base := b.String()
	if base == "" {
		base = "user"
	}
	if len(base)+len(suffix) > 20 {
		base = base[:20-len(suffix)]
	}
	return base + suffix
}

// BuildPost returns an unsaved post by owner. Its text mentions a random mood
// phrase and its emoji is whatever the classifier picks for that text.
func (f *Factory) BuildPost(owner *models.User) *models.Post {
	cat := f.lexicon.Categories[f.faker.Number(0, len(f.lexicon.Categories)-1)]
	content := f.faker.Sentence(f.faker.Number(4, 12))
	if len(cat.Phrases) > 0 {
		phrase := cat.Phrases[f.faker.Number(0, len(cat.Phrases)-1)]
		content = fmt.Sprintf("%s Feeling %s.", content, phrase)
	}

	post := &models.Post{
		ID:           uuid.NewString(),
		Content:      content,
		FeelingEmoji: f.lexicon.Classify(content),
		OwnerID:      owner.ID,
	}
	post.CreatedAt = f.pastTime()
	if post.CreatedAt.Before(owner.CreatedAt) {
		post.CreatedAt = owner.CreatedAt
	}
	post.UpdatedAt = post.CreatedAt
	if f.faker.Float64Range(0, 1) < f.opts.EditedRatio {
		post.UpdatedAt = post.CreatedAt.Add(time.Duration(f.faker.Number(1, 180)) * time.Minute)
	}
	post.IsDeleted = f.faker.Float64Range(0, 1) < f.opts.DeletedRatio
	return post
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	return f.now().Add(-back).UTC().Truncate(time.Microsecond)
}
