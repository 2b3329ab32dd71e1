package repository

import (
	"context"
	"errors"
	"strings"

	"moodfeed/internal/middleware"
	"moodfeed/internal/models"
	"moodfeed/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users. Lookups ignore
// soft-deleted accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: observability.NewRepoLogger("users", middleware.Logger),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, r.db.Dialector.Name(), "Create", "users")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("insert", "users")()

	if err = r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogWrite(ctx, "create", user.ID)
	return nil
}

func (r *userRepository) first(ctx context.Context, method, query string, args ...any) (user *models.User, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, r.db.Dialector.Name(), method, "users")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("select", "users")()

	var found models.User
	err = r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Where(query, args...).
		First(&found).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User not found")
		}
		r.log.LogError(ctx, err, method)
		return nil, err
	}
	return &found, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "GetByID", "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "GetByEmail", "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "GetByUsername", "username = ?", strings.TrimSpace(username))
}

// GetByIdentifier treats identifiers containing "@" as emails and anything
// else as a username.
func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if strings.Contains(identifier, "@") {
		return r.GetByEmail(ctx, identifier)
	}
	return r.GetByUsername(ctx, identifier)
}

// ExistsByEmailOrUsername includes soft-deleted accounts, whose email and
// username stay reserved.
func (r *userRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (exists bool, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, r.db.Dialector.Name(), "ExistsByEmailOrUsername", "users")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("select", "users")()

	var count int64
	err = r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ? OR username = ?", strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(username)).
		Count(&count).Error
	if err != nil {
		r.log.LogError(ctx, err, "exists")
		return false, err
	}
	return count > 0, nil
}
