package response

import (
	"errors"
	"log"

	"lendinghub/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// GenericFailure is shown for consistency violations and unexpected errors
const GenericFailure = "Something went wrong, please try again"

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Paginated sends a success response with list metadata
func Paginated(c *fiber.Ctx, message string, data interface{}, meta interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// FromError maps a lending error to its HTTP response.
// Validation -> 400 (404 for missing entities), precondition -> 409, everything else -> 500 with a generic message.
func FromError(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindConsistency || de.Kind == domain.KindUnknown {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		return InternalServerError(c, GenericFailure)
	}

	status := fiber.StatusBadRequest
	switch {
	case de.Kind == domain.KindPrecondition:
		status = fiber.StatusConflict
	case isNotFound(de):
		status = fiber.StatusNotFound
	case errors.Is(de, domain.ErrDuplicateEntry):
		status = fiber.StatusConflict
	}

	return c.Status(status).JSON(Response{
		Success: false,
		Error:   err.Error(),
		Code:    de.Code,
	})
}

func isNotFound(err error) bool {
	for _, target := range []error{
		domain.ErrItemNotFound,
		domain.ErrCategoryNotFound,
		domain.ErrBorrowerNotFound,
		domain.ErrRecordNotFound,
		domain.ErrReservationNotFound,
		domain.ErrNotificationNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
