package handlers

import (
	"strconv"

	"lendinghub/internal/adapters/http/middleware"
	"lendinghub/internal/core/services"
	"lendinghub/internal/pkg/pagination"
	"lendinghub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler serves the caller's notification inbox
type NotificationHandler struct {
	lending services.Lending
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(lending services.Lending) *NotificationHandler {
	return &NotificationHandler{lending: lending}
}

// List lists the caller's notifications
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	params := pagination.GetParams(c)

	notifications, total, err := h.lending.ListNotifications(c.Context(), identity.UserID, c.QueryBool("unread"), params.Offset, params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, "Notifications retrieved successfully", notifications, pagination.GetMeta(params, total))
}

// MarkRead marks one notification as read
// @Summary Mark notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	if err := h.lending.MarkNotificationRead(c.Context(), identity.UserID, uint(id)); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Notification marked as read", nil)
}
