package server

import (
	"context"
	"errors"
	"log/slog"

	"moodfeed/internal/middleware"
	"moodfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Identity resolves the caller from an optional bearer token. It never
// rejects a request: a missing, invalid, expired or revoked token, or a
// deleted account, simply leaves the request anonymous. Handlers decide
// whether anonymity is acceptable.
func (s *Server) Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := middleware.BearerToken(c)
		if err != nil {
			return c.Next()
		}

		ctx := c.UserContext()
		claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString)
		if err != nil {
			middleware.Logger.DebugContext(ctx, "ignoring invalid bearer token", slog.String("error", err.Error()))
			return c.Next()
		}

		revoked, err := s.blacklist.IsRevoked(ctx, claims.JTI)
		if err != nil {
			// without Redis the token's own expiry is the only limit
			middleware.Logger.WarnContext(ctx, "revocation check failed", slog.String("error", err.Error()))
		}
		if revoked {
			return c.Next()
		}

		user, err := s.userService.GetActiveUser(ctx, claims.UserID)
		if err != nil {
			if !models.IsCode(err, models.CodeNotFound) {
				middleware.Logger.ErrorContext(ctx, "identity lookup failed", slog.String("error", err.Error()))
			}
			return c.Next()
		}

		snapshot := user.Snapshot()
		c.Locals(middleware.LocalIdentity, &snapshot)
		c.Locals(middleware.LocalUserID, user.ID)
		c.Locals(localClaims, claims)
		c.SetUserContext(context.WithValue(ctx, middleware.UserIDKey, user.ID))
		return c.Next()
	}
}

const localClaims = "tokenClaims"

// currentIdentity is the resolved caller, or nil for anonymous requests.
func currentIdentity(c *fiber.Ctx) *models.UserSnapshot {
	identity, _ := c.Locals(middleware.LocalIdentity).(*models.UserSnapshot)
	return identity
}

func currentClaims(c *fiber.Ctx) (*middleware.TokenClaims, error) {
	claims, ok := c.Locals(localClaims).(*middleware.TokenClaims)
	if !ok {
		return nil, errors.New("no verified token")
	}
	return claims, nil
}
