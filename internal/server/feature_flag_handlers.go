package server

import (
	"moodfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FeatureFlagsResponse lists configured flags and their value for the caller.
type FeatureFlagsResponse struct {
	Raw       map[string]string `json:"raw"`
	Evaluated map[string]bool   `json:"evaluated"`
}

// GetFeatureFlags handles GET /api/v1/features
// @Summary Feature flags for the caller
// @Tags features
// @Produce json
// @Success 200 {object} models.DataResponse{data=FeatureFlagsResponse}
// @Router /features [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	resp := FeatureFlagsResponse{Raw: map[string]string{}, Evaluated: map[string]bool{}}
	if s.featureFlags != nil {
		resp.Raw = s.featureFlags.Raw()
		resp.Evaluated = s.featureFlags.Snapshot(callerID(c))
	}
	return models.RespondWithData(c, fiber.StatusOK, resp)
}

// featureEnabled evaluates name for the current caller.
func (s *Server) featureEnabled(c *fiber.Ctx, name string) bool {
	return s.featureFlags.Enabled(name, callerID(c))
}

func callerID(c *fiber.Ctx) string {
	if identity := currentIdentity(c); identity != nil {
		return identity.ID
	}
	return ""
}
