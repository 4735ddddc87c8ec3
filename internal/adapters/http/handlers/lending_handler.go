package handlers

import (
	"strconv"

	"lendinghub/internal/adapters/http/middleware"
	"lendinghub/internal/core/domain"
	"lendinghub/internal/core/services"
	"lendinghub/internal/pkg/pagination"
	"lendinghub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LendingHandler handles borrowing, returns and reservations
type LendingHandler struct {
	lending services.Lending
}

// NewLendingHandler creates a new lending handler
func NewLendingHandler(lending services.Lending) *LendingHandler {
	return &LendingHandler{lending: lending}
}

// BorrowRequest represents borrow request body.
// BorrowerID is only honoured for staff issuing on someone's behalf.
type BorrowRequest struct {
	ItemID     uint   `json:"item_id"`
	BorrowerID uint   `json:"borrower_id"`
	DueDays    int    `json:"due_days"`
	Notes      string `json:"notes"`
}

// ReturnRequest represents return request body
type ReturnRequest struct {
	Notes string `json:"notes"`
}

// ReserveRequest represents reserve request body
type ReserveRequest struct {
	ItemID uint `json:"item_id"`
}

// ============================================================
// Loans
// ============================================================

// Borrow checks out a copy
// @Summary Borrow item
// @Description Borrow one copy of an item. Staff may issue on behalf of a borrower.
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BorrowRequest true "Borrow request"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans [post]
func (h *LendingHandler) Borrow(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req BorrowRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ItemID == 0 {
		return response.BadRequest(c, "item_id is required")
	}

	input := services.BorrowInput{BorrowerID: identity.UserID, Notes: req.Notes}
	if req.BorrowerID != 0 && req.BorrowerID != identity.UserID {
		if !identity.IsStaff() {
			return response.Forbidden(c, "Only staff can issue items to other borrowers")
		}
		issuer := identity.UserID
		input.BorrowerID = req.BorrowerID
		input.IssuerID = &issuer
	}
	if identity.IsStaff() {
		input.DueDays = req.DueDays
	}

	record, err := h.lending.BorrowWith(c.Context(), req.ItemID, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Item borrowed successfully", record)
}

// MyLoans lists the caller's loans
// @Summary My loans
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LendingHandler) MyLoans(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	return h.listLoans(c, identity.UserID)
}

// UserLoans lists a borrower's loans (staff)
// @Summary Borrower loans
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Router /users/{id}/loans [get]
func (h *LendingHandler) UserLoans(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}
	return h.listLoans(c, uint(id))
}

func (h *LendingHandler) listLoans(c *fiber.Ctx, userID uint) error {
	params := pagination.GetParams(c)

	records, total, err := h.lending.ListLoans(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, "Loans retrieved successfully", records, pagination.GetMeta(params, total))
}

// GetLoan gets one borrow record
// @Summary Get loan
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LendingHandler) GetLoan(c *fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid record ID")
	}

	record, err := h.lending.GetRecord(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if record.UserID != identity.UserID && !identity.IsStaff() {
		return response.FromError(c, domain.ErrRecordNotFound)
	}
	return response.Success(c, "Loan retrieved successfully", record)
}

// Renew extends a loan
// @Summary Renew loan
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/renew [post]
func (h *LendingHandler) Renew(c *fiber.Ctx) error {
	id, ok, err := h.ownedRecord(c)
	if !ok {
		return err
	}

	record, err := h.lending.Renew(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Loan renewed successfully", record)
}

// Return closes a loan and puts the copy back (staff)
// @Summary Return item
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Param body body ReturnRequest false "Return notes"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/return [post]
func (h *LendingHandler) Return(c *fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid record ID")
	}

	var req ReturnRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	result, err := h.lending.ReturnItem(c.Context(), id, identity.UserID, req.Notes)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Item returned successfully", result)
}

// MarkLost closes a loan as lost (staff)
// @Summary Mark loan lost
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} response.Response
// @Router /loans/{id}/lost [post]
func (h *LendingHandler) MarkLost(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid record ID")
	}

	record, err := h.lending.MarkLost(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Loan marked as lost", record)
}

// PayFine settles a loan's fine (staff)
// @Summary Pay fine
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} response.Response
// @Router /loans/{id}/pay-fine [post]
func (h *LendingHandler) PayFine(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid record ID")
	}

	record, err := h.lending.PayFine(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Fine paid", record)
}

// ownedRecord parses the record ID and checks the caller may act on it.
// When ok is false the response has already been written.
func (h *LendingHandler) ownedRecord(c *fiber.Ctx) (id uuid.UUID, ok bool, err error) {
	identity, _ := middleware.IdentityFrom(c)

	id, err = uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, false, response.BadRequest(c, "Invalid record ID")
	}
	if identity.IsStaff() {
		return id, true, nil
	}

	record, err := h.lending.GetRecord(c.Context(), id)
	if err != nil {
		return uuid.Nil, false, response.FromError(c, err)
	}
	if record.UserID != identity.UserID {
		return uuid.Nil, false, response.FromError(c, domain.ErrRecordNotFound)
	}
	return id, true, nil
}

// ============================================================
// Reservations
// ============================================================

// Reserve queues the caller for an item
// @Summary Reserve item
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReserveRequest true "Item"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reservations [post]
func (h *LendingHandler) Reserve(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ItemID == 0 {
		return response.BadRequest(c, "item_id is required")
	}

	reservation, err := h.lending.Reserve(c.Context(), identity.UserID, req.ItemID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Reservation created successfully", reservation)
}

// MyReservations lists the caller's reservations
// @Summary My reservations
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reservations [get]
func (h *LendingHandler) MyReservations(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	reservations, err := h.lending.ListReservations(c.Context(), identity.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Reservations retrieved successfully", reservations)
}

// CancelReservation withdraws a reservation (owner or staff)
// @Summary Cancel reservation
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reservations/{id} [delete]
func (h *LendingHandler) CancelReservation(c *fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	reservation, err := h.lending.GetReservation(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if reservation.UserID != identity.UserID && !identity.IsStaff() {
		return response.FromError(c, domain.ErrReservationNotFound)
	}

	if err := h.lending.CancelReservation(c.Context(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Reservation cancelled", nil)
}

// ============================================================
// Sweeps (staff)
// ============================================================

// RunExpirySweep expires overdue reservations now
// @Summary Run expiry sweep
// @Tags Sweeps
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /sweeps/expiry [post]
func (h *LendingHandler) RunExpirySweep(c *fiber.Ctx) error {
	result, err := h.lending.RunExpirySweep(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Expiry sweep completed", result)
}

// RunDueReminderSweep sends due and overdue notices now
// @Summary Run due reminder sweep
// @Tags Sweeps
// @Produce json
// @Security BearerAuth
// @Param days query int false "Days ahead of the due date" default(2)
// @Success 200 {object} response.Response
// @Router /sweeps/reminders [post]
func (h *LendingHandler) RunDueReminderSweep(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "2"))
	if err != nil || days < 0 {
		return response.BadRequest(c, "days must be a non-negative integer")
	}

	result, err := h.lending.RunDueReminderSweep(c.Context(), days)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Due reminder sweep completed", result)
}
