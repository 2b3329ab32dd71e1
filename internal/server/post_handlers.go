package server

import (
	"moodfeed/internal/models"
	"moodfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// MsgInvalidBody is returned when a JSON body cannot be decoded.
const MsgInvalidBody = "Invalid request body"

type createPostRequest struct {
	Content      string  `json:"content"`
	FeelingEmoji *string `json:"feelingEmoji"`
}

type updatePostRequest struct {
	Content      *string `json:"content"`
	FeelingEmoji *string `json:"feelingEmoji"`
}

// GetPosts handles GET /api/v1/posts
// @Summary List posts
// @Description Active posts, newest first
// @Tags posts
// @Produce json
// @Success 200 {object} models.DataResponse{data=[]models.Post}
// @Failure 500 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, posts)
}

// GetPost handles GET /api/v1/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.DataResponse{data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, post)
}

// CreatePost handles POST /api/v1/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createPostRequest true "Post"
// @Success 201 {object} models.DataResponse{data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	actor := currentIdentity(c)
	if actor == nil {
		return models.RespondWithError(c, models.NewUnauthorizedError(service.MsgUnauthorized))
	}

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError(MsgInvalidBody))
	}

	post, err := s.postService.CreatePost(c.UserContext(), actor, service.CreatePostInput{
		Content:      req.Content,
		FeelingEmoji: req.FeelingEmoji,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, post)
}

// UpdatePost handles PATCH /api/v1/posts/:id
// @Summary Edit a post
// @Description Only provided fields change. Owner only.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body updatePostRequest true "Patch"
// @Success 200 {object} models.DataResponse{data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actor := currentIdentity(c)
	id := c.Params("id")

	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		// identity, id, visibility and ownership failures outrank a bad body
		if _, checkErr := s.postService.CheckOwnership(ctx, actor, id, service.ActionEdit); checkErr != nil {
			return models.RespondWithError(c, checkErr)
		}
		return models.RespondWithError(c, models.NewValidationError(MsgInvalidBody))
	}

	post, err := s.postService.UpdatePost(ctx, actor, id, service.UpdatePostInput{
		Content:      req.Content,
		FeelingEmoji: req.FeelingEmoji,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, post)
}

// DeletePost handles DELETE /api/v1/posts/:id
// @Summary Soft-delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.UserContext(), currentIdentity(c), c.Params("id")); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, service.MsgPostDeleted)
}
