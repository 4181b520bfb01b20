package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateTheme handles PUT /api/user/theme
// @Summary Change theme
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateThemeInput true "Theme"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /user/theme [put]
func (s *Server) UpdateTheme(c *fiber.Ctx) error {
	var req service.UpdateThemeInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	user, err := s.users.UpdateTheme(c.UserContext(), actorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateProfile handles PUT /api/users/profile
// @Summary Edit profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateProfileInput true "Profile"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /users/profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	user, err := s.users.UpdateProfile(c.UserContext(), actorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetPublicProfile handles GET /api/users/:username
// @Summary Public profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetPublicProfile(c *fiber.Ctx) error {
	profile, err := s.users.PublicProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
