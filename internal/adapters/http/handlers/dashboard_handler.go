package handlers

import (
	"lendinghub/internal/adapters/http/middleware"
	"lendinghub/internal/core/services"
	"lendinghub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetMyDashboard returns the dashboard matching the caller's role
// @Summary Get my dashboard
// @Description Staff get library-wide statistics, borrowers their own summary
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetMyDashboard(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if identity.IsStaff() {
		return h.GetStaffDashboard(c)
	}
	return h.GetBorrowerDashboard(c)
}

// GetStaffDashboard returns library-wide statistics
// @Summary Staff dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/staff [get]
func (h *DashboardHandler) GetStaffDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetStaffDashboard(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dashboard retrieved successfully", data)
}

// GetBorrowerDashboard returns the caller's loan and reservation summary
// @Summary Borrower dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/me [get]
func (h *DashboardHandler) GetBorrowerDashboard(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.GetBorrowerDashboard(c.Context(), identity.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dashboard retrieved successfully", data)
}
