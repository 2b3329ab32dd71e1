package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"moodfeed/internal/middleware"
	"moodfeed/internal/models"
	"moodfeed/internal/repository"
	"moodfeed/internal/validation"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Caller-facing messages for account operations.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgAccountTaken       = "Email or username already in use"
	MsgRegisterFailed     = "Failed to create account"
	MsgLoginFailed        = "Failed to log in"
)

const pgUniqueViolation = "23505"

// UserService registers accounts and verifies credentials.
type UserService struct {
	userRepo   repository.UserRepository
	avatarURL  func(username string) string
	bcryptCost int
}

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput identifies a user by email or username.
type LoginInput struct {
	Identifier string
	Password   string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo:   userRepo,
		avatarURL:  RandomAvatarURL,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// RandomAvatarURL picks a generated avatar seeded by username.
func RandomAvatarURL(username string) string {
	return fmt.Sprintf("https://api.dicebear.com/9.x/thumbs/svg?seed=%s", username)
}

// Register validates the input, rejects taken emails and usernames, and stores
// the account with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	req := validation.RegisterRequest{Username: in.Username, Email: in.Email, Password: in.Password}
	if err := validation.ValidateRegister(req); err != nil {
		return nil, models.NewValidationError(MsgValidationFailed, validation.Issues(err)...)
	}

	taken, err := s.userRepo.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return nil, s.persistenceFailure(ctx, "register", MsgRegisterFailed, err)
	}
	if taken {
		return nil, models.NewConflictError(MsgAccountTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, s.persistenceFailure(ctx, "hash", MsgRegisterFailed, err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hash),
		AvatarURL: s.avatarURL(in.Username),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// a concurrent sign-up can win between the check and the insert
		if isUniqueViolation(err) {
			return nil, models.NewConflictError(MsgAccountTaken)
		}
		return nil, s.persistenceFailure(ctx, "register", MsgRegisterFailed, err)
	}
	return user, nil
}

// Authenticate returns the user whose identifier and password match. Unknown
// users and wrong passwords are indistinguishable.
func (s *UserService) Authenticate(ctx context.Context, in LoginInput) (*models.User, error) {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" || in.Password == "" {
		return nil, models.NewValidationError(MsgValidationFailed,
			models.ValidationIssue{Field: "identifier", Code: "required", Message: "Email or username and password are required"})
	}

	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError(MsgInvalidCredentials)
		}
		return nil, s.persistenceFailure(ctx, "login", MsgLoginFailed, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError(MsgInvalidCredentials)
	}
	return user, nil
}

// GetActiveUser loads a non-deleted user by id.
func (s *UserService) GetActiveUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) persistenceFailure(ctx context.Context, op, message string, err error) error {
	middleware.Logger.ErrorContext(ctx, "user persistence failure",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	return models.NewPersistenceError(message, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
