package seed

import (
	"context"
	"regexp"
	"testing"

	"moodfeed/internal/config"
	"moodfeed/internal/database"
	"moodfeed/internal/models"
	"moodfeed/internal/sentiment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(context.Background(), &config.Config{DBDriver: "sqlite", DBName: ":memory:", Env: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestUsernameFrom(t *testing.T) {
	tests := []struct {
		raw  string
		n    int
		want string
	}{
		{"Smith123", 1, "Smith123_1"},
		{"o'Brien.x", 2, "oBrienx_2"},
		{"", 3, "user_3"},
		{"Averyveryverylongusername", 42, "Averyveryverylong_42"},
		{"héllo", 7, "hllo_7"},
	}
	for _, tt := range tests {
		got := usernameFrom(tt.raw, tt.n)
		assert.Equal(t, tt.want, got)
		assert.Regexp(t, usernamePattern, got)
	}
}

func TestFactory_BuildPost(t *testing.T) {
	f, err := NewFactory(Options{SkipBcrypt: true, Seed: 7, MaxDays: 10})
	require.NoError(t, err)
	owner := f.BuildUser(1)
	assert.Regexp(t, usernamePattern, owner.Username)
	assert.Equal(t, DefaultPassword, owner.Password)

	for i := 0; i < 50; i++ {
		p := f.BuildPost(owner)
		assert.NotEmpty(t, p.Content)
		assert.Equal(t, sentiment.Classify(p.Content), p.FeelingEmoji)
		assert.Equal(t, owner.ID, p.OwnerID)
		assert.False(t, p.IsDeleted)
		assert.False(t, p.Edited())
		assert.False(t, p.CreatedAt.Before(owner.CreatedAt))
	}
}

func TestFactory_HashesPassword(t *testing.T) {
	f, err := NewFactory(Options{Seed: 1})
	require.NoError(t, err)
	assert.NotEqual(t, DefaultPassword, f.BuildUser(1).Password)
}

func TestSeeder_DryRunWritesNothing(t *testing.T) {
	s, err := NewSeeder(nil, Options{DryRun: true, SkipBcrypt: true, Seed: 3})
	require.NoError(t, err)
	require.NoError(t, s.ClearAll(context.Background()))

	summary, err := s.Run(context.Background(), 3, 9)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Users)
	assert.Equal(t, 9, summary.Posts)

	_, err = NewSeeder(nil, Options{})
	assert.Error(t, err)
}

func TestSeeder_RunPersists(t *testing.T) {
	db := setupSQLiteDB(t)
	s, err := NewSeeder(db, Options{SkipBcrypt: true, Seed: 11, DeletedRatio: 1})
	require.NoError(t, err)

	summary, err := s.Run(context.Background(), 4, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, summary.DeletedPosts)

	var users, posts int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("is_deleted = ?", true).Count(&posts).Error)
	assert.EqualValues(t, 4, users)
	assert.EqualValues(t, 12, posts)

	require.NoError(t, s.ClearAll(context.Background()))
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Zero(t, users)
	assert.Zero(t, posts)
}

func TestSeeder_PostsNeedUsers(t *testing.T) {
	s, err := NewSeeder(nil, Options{DryRun: true, SkipBcrypt: true})
	require.NoError(t, err)
	_, err = s.SeedPosts(context.Background(), nil, 1)
	assert.Error(t, err)
}
