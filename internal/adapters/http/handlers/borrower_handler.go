package handlers

import (
	"errors"
	"strconv"

	"lendinghub/internal/adapters/http/middleware"
	"lendinghub/internal/core/services"
	"lendinghub/internal/pkg/pagination"
	"lendinghub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BorrowerHandler handles user and borrower profile administration
type BorrowerHandler struct {
	borrowerService *services.BorrowerService
}

// NewBorrowerHandler creates a new borrower handler
func NewBorrowerHandler(borrowerService *services.BorrowerService) *BorrowerHandler {
	return &BorrowerHandler{borrowerService: borrowerService}
}

// CreateUser creates a user with its borrower profile
// @Summary Create user
// @Description Create a user and borrower profile (Admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *BorrowerHandler) CreateUser(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	profile, err := h.borrowerService.CreateUser(c.Context(), &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "User created successfully", profile)
}

// ListUsers lists all users
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *BorrowerHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.borrowerService.ListUsers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, "Users retrieved successfully", users, pagination.GetMeta(params, total))
}

// GetBorrower gets a user's borrower profile
// @Summary Get borrower
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *BorrowerHandler) GetBorrower(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	profile, err := h.borrowerService.GetBorrower(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Borrower retrieved successfully", profile)
}

// UpdateBorrower changes a borrower's limit or active flag
// @Summary Update borrower
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateBorrowerInput true "Settings"
// @Success 200 {object} response.Response
// @Router /users/{id} [put]
func (h *BorrowerHandler) UpdateBorrower(c *fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var input services.UpdateBorrowerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	profile, err := h.borrowerService.UpdateBorrower(c.Context(), identity.UserID, uint(id), &input)
	if err != nil {
		if errors.Is(err, services.ErrCannotDeactivateSelf) {
			return response.BadRequest(c, "Cannot deactivate your own account")
		}
		return response.FromError(c, err)
	}
	return response.Success(c, "Borrower updated successfully", profile)
}
