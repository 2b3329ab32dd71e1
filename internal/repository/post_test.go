package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"moodfeed/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPost(t *testing.T, repo PostRepository, owner *models.User, content string, at time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Content:      content,
		FeelingEmoji: models.NeutralFeelingEmoji,
		OwnerID:      owner.ID,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

func TestPostRepository_ListActive_NewestFirstWithOwner(t *testing.T) {
	db := setupSQLiteDB(t)
	users := NewUserRepository(db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := createUser(t, users, "poster")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := createPost(t, repo, owner, "first", base)
	newer := createPost(t, repo, owner, "second", base.Add(time.Minute))
	deleted := createPost(t, repo, owner, "third", base.Add(2*time.Minute))
	require.NoError(t, repo.MarkDeleted(ctx, deleted.ID))

	posts, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)

	for _, p := range posts {
		assert.True(t, p.Owner.IsResolved())
		assert.Equal(t, "poster", p.OwnerName(""))
		assert.False(t, p.IsDeleted)
	}
}

func TestPostRepository_ListActive_EmptyIsNotNil(t *testing.T) {
	db := setupSQLiteDB(t)
	posts, err := NewPostRepository(db).ListActive(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_FindActiveByID(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := createUser(t, NewUserRepository(db), "finder")
	post := createPost(t, repo, owner, "hello", time.Now().UTC())

	found, err := repo.FindActiveByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", found.Content)
	assert.Equal(t, owner.ID, found.Owner.ID())

	require.NoError(t, repo.MarkDeleted(ctx, post.ID))
	_, err = repo.FindActiveByID(ctx, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	err = repo.MarkDeleted(ctx, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound), "already deleted")
}

func TestPostRepository_Save(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := createUser(t, NewUserRepository(db), "editor")
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	post := createPost(t, repo, owner, "draft", created)

	post.Content = "final"
	post.FeelingEmoji = "🎉"
	post.UpdatedAt = created.Add(time.Hour)
	require.NoError(t, repo.Save(ctx, post))

	found, err := repo.FindActiveByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", found.Content)
	assert.Equal(t, "🎉", found.FeelingEmoji)
	assert.True(t, found.CreatedAt.Equal(created))
	assert.True(t, found.UpdatedAt.Equal(created.Add(time.Hour)))
	assert.True(t, found.Edited())
}

func TestPostRepository_MarkDeleted_KeepsUpdatedAt(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := createUser(t, NewUserRepository(db), "deleter")
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	post := createPost(t, repo, owner, "bye", at)

	require.NoError(t, repo.MarkDeleted(ctx, post.ID))

	var stored models.Post
	require.NoError(t, db.First(&stored, "id = ?", post.ID).Error)
	assert.True(t, stored.IsDeleted)
	assert.True(t, stored.UpdatedAt.Equal(at))
}

func TestPostRepository_Save_MissingPost(t *testing.T) {
	db := setupSQLiteDB(t)
	err := NewPostRepository(db).Save(context.Background(), &models.Post{ID: "missing", Content: "x", FeelingEmoji: "💭"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_FindActiveByID_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE is_deleted = $1 AND id = $2`)).
		WithArgs(false, "p1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindActiveByID(context.Background(), "p1")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListActive_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE is_deleted = $1 ORDER BY created_at DESC`)).
		WithArgs(false).
		WillReturnError(errors.New("timeout"))

	posts, err := repo.ListActive(context.Background())
	assert.Error(t, err)
	assert.Nil(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_MarkDeleted_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "is_deleted"=$1 WHERE id = $2 AND is_deleted = $3`)).
		WithArgs(true, "p1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkDeleted(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
