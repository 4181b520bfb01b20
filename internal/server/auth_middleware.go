package server

import (
	"errors"

	"agora/internal/authz"
	"agora/internal/middleware"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// resolveSession verifies the request's token and loads its user.
func (s *Server) resolveSession(c *fiber.Ctx) (*models.User, *middleware.Session, error) {
	sess, err := s.sessions.Verify(c.UserContext(), s.sessions.TokenFrom(c))
	if err != nil {
		if errors.Is(err, middleware.ErrNoSession) {
			return nil, nil, models.NewUnauthenticatedError("Login required")
		}
		return nil, nil, models.NewUnauthenticatedError("Invalid or expired session")
	}
	user, err := s.userRepo.GetByID(c.UserContext(), sess.UserID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, nil, models.NewUnauthenticatedError("Account no longer exists")
		}
		return nil, nil, err
	}
	return user, sess, nil
}

func (s *Server) attachSession(c *fiber.Ctx, user *models.User, sess *middleware.Session) {
	c.Locals(localsActor, user.Actor())
	c.Locals(localsUserID, user.ID)
	c.Locals(localsToken, sess)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
}

// AuthRequired returns the authentication middleware. It accepts a Bearer
// token or the session cookie and stores the caller as an actor in locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, sess, err := s.resolveSession(c)
		if err != nil {
			return respondError(c, err)
		}
		s.attachSession(c, user, sess)
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid session is present and
// lets anonymous requests through otherwise.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.sessions.TokenFrom(c) == "" {
			return c.Next()
		}
		if user, sess, err := s.resolveSession(c); err == nil {
			s.attachSession(c, user, sess)
		}
		return c.Next()
	}
}

// AdminRequired rejects callers below admin. It must run after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authz.Require(actorFrom(c), models.RoleAdmin); err != nil {
			return respondError(c, err)
		}
		return c.Next()
	}
}
