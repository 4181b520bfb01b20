package server

import (
	"errors"
	"log/slog"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers return nil when they see it so the error
// handler does not overwrite the response.
var errResponseWritten = errors.New("response already written")

const (
	localsActor  = "actor"
	localsUserID = "userID"
	localsToken  = "session"

	maxPaginationLimit = 100
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// respondError writes the error body for err. Internal failures are logged
// with their cause and answered with a generic message.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	var appErr *models.AppError
	if status == fiber.StatusInternalServerError || !errors.As(err, &appErr) {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Internal server error",
			Code:  models.CodeInternal,
		})
	}
	return c.Status(status).JSON(models.ErrorResponse{Error: appErr.Message, Code: appErr.Code})
}

// parseID extracts a route parameter as a positive id. On failure it writes
// a 400 response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = respondError(c, models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// bindJSON decodes the request body into dst. On failure it writes a 400
// response and returns errResponseWritten.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = respondError(c, models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// validateRequest checks dst against its validate tags. On failure it writes
// a 400 response and returns errResponseWritten.
func validateRequest(c *fiber.Ctx, dst any) error {
	if err := validation.Struct(dst); err != nil {
		_ = respondError(c, err)
		return errResponseWritten
	}
	return nil
}

// actorFrom returns the authenticated caller, or nil for anonymous requests.
func actorFrom(c *fiber.Ctx) *models.Actor {
	actor, _ := c.Locals(localsActor).(*models.Actor)
	return actor
}

// clientIP is the address recorded in admin logs. Behind a proxy fiber
// resolves it from the configured ProxyHeader.
func clientIP(c *fiber.Ctx) string {
	return c.IP()
}
