package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitReaction handles POST /api/reactions
// @Summary Like or dislike a post or comment
// @Description The same kind twice removes the reaction; the other kind switches it
// @Tags reactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SubmitReactionInput true "Reaction"
// @Success 200 {object} object{message=string,added=bool,likes=int,dislikes=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reactions [post]
func (s *Server) SubmitReaction(c *fiber.Ctx) error {
	var req service.SubmitReactionInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	res, err := s.reactions.Submit(c.UserContext(), actorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":           res.Message(),
		string(res.Outcome): true,
		"likes":             res.Likes,
		"dislikes":          res.Dislikes,
		"user_reaction":     res.Current,
	})
}
