package server

import (
	"moodfeed/internal/featureflags"
	"moodfeed/internal/models"
	"moodfeed/internal/observability"

	"github.com/gofiber/fiber/v2"
)

type classifyRequest struct {
	Text string `json:"text"`
}

// ClassifyResponse is the emoji picked for a piece of text.
type ClassifyResponse struct {
	Emoji string `json:"emoji"`
}

// MsgEmojiUnavailable is returned while the emoji_suggest flag is off for the caller.
const MsgEmojiUnavailable = "Emoji suggestions are not available"

// ClassifyEmoji handles POST /api/v1/emoji
// @Summary Suggest a feeling emoji
// @Description Scores text against the sentiment lexicon. Empty text yields the neutral emoji.
// @Tags emoji
// @Accept json
// @Produce json
// @Param request body classifyRequest true "Text"
// @Success 200 {object} models.DataResponse{data=ClassifyResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /emoji [post]
func (s *Server) ClassifyEmoji(c *fiber.Ctx) error {
	if !s.featureEnabled(c, featureflags.FlagEmojiSuggest) {
		return models.RespondWithError(c, models.NewNotFoundError(MsgEmojiUnavailable))
	}
	var req classifyRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError(MsgInvalidBody))
	}
	emoji := s.lexicon.Classify(req.Text)
	observability.RecordClassification(emoji)
	return models.RespondWithData(c, fiber.StatusOK, ClassifyResponse{Emoji: emoji})
}
