package server

import (
	"github.com/gofiber/fiber/v2"
)

type markReadRequest struct {
	NotificationIDs []uint `json:"notificationIds"`
}

// ListNotifications handles GET /api/notifications
// @Summary List notifications
// @Description The 50 most recent notifications of the caller, newest first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Notification
// @Router /notifications [get]
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	list, err := s.notifications.List(c.UserContext(), actorFrom(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// UnreadCount handles GET /api/notifications/unread-count
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{unread_count=int}
// @Router /notifications/unread-count [get]
func (s *Server) UnreadCount(c *fiber.Ctx) error {
	n, err := s.notifications.UnreadCount(c.UserContext(), actorFrom(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": n})
}

// MarkNotificationsRead handles PUT /api/notifications/read
// @Summary Mark notifications read
// @Description Without ids every unread notification is marked
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body markReadRequest false "Notification ids"
// @Success 200 {object} object{message=string,unread_count=int}
// @Router /notifications/read [put]
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	var req markReadRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return nil
		}
	}
	unread, err := s.notifications.MarkRead(c.UserContext(), actorFrom(c).ID, req.NotificationIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notifications marked as read", "unread_count": unread})
}
