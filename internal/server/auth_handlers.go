package server

import (
	"log/slog"

	"moodfeed/internal/middleware"
	"moodfeed/internal/models"
	"moodfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// LoginResponse carries the bearer token and the account it belongs to.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Register handles POST /api/v1/auth/register
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerRequest true "Sign-up request"
// @Success 201 {object} models.DataResponse{data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError(MsgInvalidBody))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Description Accepts an email or username as identifier. "email" is accepted as an alias.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} models.DataResponse{data=LoginResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError(MsgInvalidBody))
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}

	user, err := s.userService.Authenticate(c.UserContext(), service.LoginInput{
		Identifier: identifier,
		Password:   req.Password,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	token, claims, err := middleware.IssueToken(s.config.JWTSecret, user.ID, s.now())
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "failed to issue token", slog.String("error", err.Error()))
		return models.RespondWithError(c, models.NewPersistenceError(service.MsgLoginFailed, err))
	}

	return models.RespondWithData(c, fiber.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Unix(),
		User:      user,
	})
}

// Logout handles POST /api/v1/auth/logout
// @Summary Revoke the current token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return models.RespondWithError(c, models.NewUnauthorizedError(service.MsgUnauthorized))
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if err := s.blacklist.Revoke(c.UserContext(), claims.JTI, ttl); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to revoke token", slog.String("error", err.Error()))
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Logged out successfully")
}

// Me handles GET /api/v1/auth/me
// @Summary Current identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DataResponse{data=models.UserSnapshot}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	identity := currentIdentity(c)
	if identity == nil {
		return models.RespondWithError(c, models.NewUnauthorizedError(service.MsgUnauthorized))
	}
	return models.RespondWithData(c, fiber.StatusOK, identity)
}
