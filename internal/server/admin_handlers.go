package server

import (
	"agora/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

// AdminListUsers handles GET /api/admin/users
// @Summary Search users
// @Description Emails are masked unless the caller is a developer
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Username or email fragment"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} service.UserPage
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/users [get]
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	page, err := s.admin.ListUsers(c.UserContext(), actorFrom(c), repository.UserFilter{
		Search: c.Query("search"),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// ChangeUserRole handles PUT /api/admin/users/:id/role
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body roleRequest true "New role"
// @Success 200 {object} object{message=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/users/{id}/role [put]
func (s *Server) ChangeUserRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req roleRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := validateRequest(c, req); err != nil {
		return nil
	}
	user, err := s.admin.ChangeRole(c.UserContext(), actorFrom(c), id, req.Role, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role updated", "user": user})
}

// AdminLogs handles GET /api/admin/logs
// @Summary Audit log
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} service.LogPage
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/logs [get]
func (s *Server) AdminLogs(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	page, err := s.admin.Logs(c.UserContext(), actorFrom(c), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// Stats handles GET /api/stats
// @Summary Forum totals
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ForumStats
// @Failure 403 {object} models.ErrorResponse
// @Router /stats [get]
func (s *Server) Stats(c *fiber.Ctx) error {
	stats, err := s.admin.Stats(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
