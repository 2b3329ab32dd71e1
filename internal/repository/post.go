// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"moodfeed/internal/middleware"
	"moodfeed/internal/models"
	"moodfeed/internal/observability"

	"gorm.io/gorm"
)

// PostRepository persists posts. Reads only ever see posts that are not
// soft-deleted, newest first, with the owner preloaded.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindActiveByID(ctx context.Context, id string) (*models.Post, error)
	ListActive(ctx context.Context) ([]*models.Post, error)
	Save(ctx context.Context, post *models.Post) error
	MarkDeleted(ctx context.Context, id string) error
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{
		db:  db,
		log: observability.NewRepoLogger("posts", middleware.Logger),
	}
}

func (r *postRepository) dbSystem() string {
	return r.db.Dialector.Name()
}

func (r *postRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("OwnerUser").
		Where("is_deleted = ?", false)
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, r.dbSystem(), "Create", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("insert", "posts")()

	if err = r.db.WithContext(ctx).Omit("OwnerUser").Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogWrite(ctx, "create", post.ID)
	return nil
}

func (r *postRepository) FindActiveByID(ctx context.Context, id string) (post *models.Post, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, r.dbSystem(), "FindActiveByID", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("select", "posts")()

	var found models.Post
	if err = r.active(ctx).Where("id = ?", id).First(&found).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		r.log.LogError(ctx, err, "find")
		return nil, err
	}
	return &found, nil
}

func (r *postRepository) ListActive(ctx context.Context) (posts []*models.Post, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, r.dbSystem(), "ListActive", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("select", "posts")()

	posts = []*models.Post{}
	if err = r.active(ctx).Order("created_at DESC").Find(&posts).Error; err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, err
	}
	return posts, nil
}

// Save writes the mutable columns of post. UpdatedAt is taken from post as
// given, so callers control the edit timestamp.
func (r *postRepository) Save(ctx context.Context, post *models.Post) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, r.dbSystem(), "Save", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("update", "posts")()

	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND is_deleted = ?", post.ID, false).
		UpdateColumns(map[string]any{
			"content":       post.Content,
			"feeling_emoji": post.FeelingEmoji,
			"updated_at":    post.UpdatedAt,
		})
	if err = res.Error; err != nil {
		r.log.LogError(ctx, err, "save")
		return err
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post not found")
	}
	r.log.LogWrite(ctx, "save", post.ID)
	return nil
}

// MarkDeleted flips is_deleted without touching updated_at.
func (r *postRepository) MarkDeleted(ctx context.Context, id string) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, r.dbSystem(), "MarkDeleted", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("update", "posts")()

	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND is_deleted = ?", id, false).
		UpdateColumn("is_deleted", true)
	if err = res.Error; err != nil {
		r.log.LogError(ctx, err, "delete")
		return err
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post not found")
	}
	r.log.LogWrite(ctx, "delete", id)
	return nil
}
