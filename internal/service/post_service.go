// Package service holds the business rules behind the HTTP handlers.
package service

import (
	"context"
	"log/slog"
	"time"

	"moodfeed/internal/middleware"
	"moodfeed/internal/models"
	"moodfeed/internal/observability"
	"moodfeed/internal/repository"
	"moodfeed/internal/validation"

	"github.com/google/uuid"
)

// Caller-facing messages for post operations.
const (
	MsgUnauthorized     = "Unauthorized - Authentication required"
	MsgInvalidPostID    = "Invalid post ID format"
	MsgPostNotFound     = "Post not found"
	MsgForbiddenEdit    = "Forbidden - You can only edit your own posts"
	MsgForbiddenDelete  = "Forbidden - You can only delete your own posts"
	MsgValidationFailed = "Validation failed"
	MsgFetchPostsFailed = "Failed to fetch posts"
	MsgFetchPostFailed  = "Failed to fetch post"
	MsgCreatePostFailed = "Failed to create post"
	MsgUpdatePostFailed = "Failed to update post"
	MsgDeletePostFailed = "Failed to delete post"
	MsgPostDeleted      = "Post deleted successfully"
)

// Action names the owner-only operation being checked.
type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

func (a Action) forbiddenMessage() string {
	if a == ActionDelete {
		return MsgForbiddenDelete
	}
	return MsgForbiddenEdit
}

func (a Action) failureMessage() string {
	if a == ActionDelete {
		return MsgDeletePostFailed
	}
	return MsgUpdatePostFailed
}

// PostService applies the post lifecycle: absent, active, deleted. Every
// mutation checks, in order, identity, identifier format, visibility,
// ownership and then content.
type PostService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

// CreatePostInput is a new post. A nil FeelingEmoji stores the neutral emoji.
type CreatePostInput struct {
	Content      string
	FeelingEmoji *string
}

// UpdatePostInput is a partial patch; nil fields keep their stored value.
type UpdatePostInput struct {
	Content      *string
	FeelingEmoji *string
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo, now: time.Now}
}

// timestamp is truncated to what postgres stores so a created post compares
// equal to its reloaded copy.
func (s *PostService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *PostService) ListPosts(ctx context.Context) (posts []*models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "ListPosts")
	defer func() {
		observability.EndSpan(span, err)
		observability.RecordPostOperation("list", err)
	}()

	posts, err = s.postRepo.ListActive(ctx)
	if err != nil {
		return nil, s.persistenceFailure(ctx, "list", MsgFetchPostsFailed, err)
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "GetPost")
	defer func() {
		observability.EndSpan(span, err)
		observability.RecordPostOperation("get", err)
	}()

	id, ok := canonicalPostID(id)
	if !ok {
		return nil, models.NewInvalidIdentifierError(MsgInvalidPostID)
	}
	return s.find(ctx, id, MsgFetchPostFailed)
}

func (s *PostService) CreatePost(ctx context.Context, actor *models.UserSnapshot, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "CreatePost")
	defer func() {
		observability.EndSpan(span, err)
		observability.RecordPostOperation("create", err)
	}()

	if actor == nil {
		return nil, models.NewUnauthorizedError(MsgUnauthorized)
	}
	req := validation.CreatePostRequest{Content: in.Content, FeelingEmoji: in.FeelingEmoji}
	if verr := validation.ValidateCreatePost(req); verr != nil {
		return nil, models.NewValidationError(MsgValidationFailed, validation.Issues(verr)...)
	}

	emoji := models.NeutralFeelingEmoji
	if in.FeelingEmoji != nil {
		emoji = *in.FeelingEmoji
	}
	now := s.timestamp()
	post = &models.Post{
		Content:      in.Content,
		FeelingEmoji: emoji,
		OwnerID:      actor.ID,
		IsDeleted:    false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, s.persistenceFailure(ctx, "create", MsgCreatePostFailed, err)
	}
	post.Owner = models.Resolved(actor.ID, *actor)
	return post, nil
}

// CheckOwnership runs the identity, identifier, visibility and ownership
// checks for action and returns the active post when they all pass.
func (s *PostService) CheckOwnership(ctx context.Context, actor *models.UserSnapshot, id string, action Action) (*models.Post, error) {
	if actor == nil {
		return nil, models.NewUnauthorizedError(MsgUnauthorized)
	}
	id, ok := canonicalPostID(id)
	if !ok {
		return nil, models.NewInvalidIdentifierError(MsgInvalidPostID)
	}
	post, err := s.find(ctx, id, action.failureMessage())
	if err != nil {
		return nil, err
	}
	if post.OwnerID != actor.ID {
		return nil, models.NewForbiddenError(action.forbiddenMessage())
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, actor *models.UserSnapshot, id string, in UpdatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "UpdatePost")
	defer func() {
		observability.EndSpan(span, err)
		observability.RecordPostOperation("update", err)
	}()

	post, err = s.CheckOwnership(ctx, actor, id, ActionEdit)
	if err != nil {
		return nil, err
	}
	if in.Content != nil {
		if verr := validation.ValidateContent(*in.Content); verr != nil {
			return nil, models.NewValidationError(MsgValidationFailed, validation.Issues(verr)...)
		}
		post.Content = *in.Content
	}
	if in.FeelingEmoji != nil {
		post.FeelingEmoji = *in.FeelingEmoji
	}
	post.UpdatedAt = s.timestamp()

	if err := s.postRepo.Save(ctx, post); err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError(MsgPostNotFound)
		}
		return nil, s.persistenceFailure(ctx, "update", MsgUpdatePostFailed, err)
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, actor *models.UserSnapshot, id string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "DeletePost")
	defer func() {
		observability.EndSpan(span, err)
		observability.RecordPostOperation("delete", err)
	}()

	post, err := s.CheckOwnership(ctx, actor, id, ActionDelete)
	if err != nil {
		return err
	}
	if err := s.postRepo.MarkDeleted(ctx, post.ID); err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return models.NewNotFoundError(MsgPostNotFound)
		}
		return s.persistenceFailure(ctx, "delete", MsgDeletePostFailed, err)
	}
	return nil
}

func (s *PostService) find(ctx context.Context, id, failureMessage string) (*models.Post, error) {
	post, err := s.postRepo.FindActiveByID(ctx, id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError(MsgPostNotFound)
		}
		return nil, s.persistenceFailure(ctx, "find", failureMessage, err)
	}
	return post, nil
}

func (s *PostService) persistenceFailure(ctx context.Context, op, message string, err error) error {
	middleware.Logger.ErrorContext(ctx, "post persistence failure",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	return models.NewPersistenceError(message, err)
}

// canonicalPostID accepts only the hyphenated 36-character form, in either
// case, and returns it lowercased as stored.
func canonicalPostID(id string) (string, bool) {
	if len(id) != 36 {
		return "", false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
