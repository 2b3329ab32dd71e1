package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"moodfeed/internal/config"
	"moodfeed/internal/database"
	"moodfeed/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBDriver:                 "sqlite",
		DBName:                   ":memory:",
		DBConnMaxLifetimeMinutes: 30,
		Env:                      "test",
	}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func createUser(t *testing.T, repo UserRepository, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hash",
		AvatarURL: "https://example.com/" + username + ".png",
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_Lookups(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, repo, "alice")
	require.NotEmpty(t, alice.ID)

	byID, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byEmail, err := repo.GetByEmail(ctx, "  ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	byName, err := repo.GetByIdentifier(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	byIdent, err := repo.GetByIdentifier(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byIdent.ID)

	_, err = repo.GetByUsername(ctx, "bob")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUserRepository_SoftDeletedHidden(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	gone := createUser(t, repo, "gone")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", gone.ID).Update("is_deleted", true).Error)

	_, err := repo.GetByID(ctx, gone.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	exists, err := repo.ExistsByEmailOrUsername(ctx, "other@example.com", "gone")
	require.NoError(t, err)
	assert.True(t, exists, "deleted usernames stay reserved")
}

func TestUserRepository_ExistsByEmailOrUsername(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	createUser(t, repo, "carol")

	exists, err := repo.ExistsByEmailOrUsername(ctx, "CAROL@example.com", "someone")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmailOrUsername(ctx, "dave@example.com", "dave")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_DuplicateRejected(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	createUser(t, repo, "erin")

	err := repo.Create(context.Background(), &models.User{Username: "erin", Email: "x@example.com", Password: "hash"})
	assert.Error(t, err)
}

func TestUserRepository_GetByID_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE is_deleted = $1 AND id = $2`)).
		WithArgs(false, "u1", 1).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), "u1")
	require.Error(t, err)
	assert.False(t, models.IsCode(err, models.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
