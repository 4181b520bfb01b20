package server

import (
	"log/slog"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create a normal account and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration"
// @Success 201 {object} sessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	user, err := s.users.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return s.startSession(c, fiber.StatusCreated, user)
}

// Login handles POST /api/auth/login
// @Summary Login
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} sessionResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := validateRequest(c, req); err != nil {
		return nil
	}
	user, err := s.users.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return s.startSession(c, fiber.StatusOK, user)
}

func (s *Server) startSession(c *fiber.Ctx, status int, user *models.User) error {
	token, sess, err := s.sessions.Issue(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	s.sessions.SetCookie(c, token, sess.ExpiresAt)
	return c.Status(status).JSON(sessionResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the current session token and clear the cookie
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if sess, err := s.sessions.Verify(c.UserContext(), s.sessions.TokenFrom(c)); err == nil {
		if err := s.sessions.Revoke(c.UserContext(), sess); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "session revoke failed", slog.String("error", err.Error()))
		}
	}
	s.sessions.ClearCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.users.GetUser(c.UserContext(), actorFrom(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteAccount handles DELETE /api/auth/account
// @Summary Delete own account
// @Description Remove the caller and everything they wrote
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/account [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	if err := s.users.DeleteAccount(c.UserContext(), actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	if sess, ok := c.Locals(localsToken).(*middleware.Session); ok {
		_ = s.sessions.Revoke(c.UserContext(), sess)
	}
	s.sessions.ClearCookie(c)
	return c.JSON(fiber.Map{"message": "Account deleted"})
}
