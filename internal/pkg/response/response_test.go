package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"lendinghub/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", fmt.Errorf("%w: isbn", domain.ErrInvalidInput), fiber.StatusBadRequest, "INVALID_INPUT"},
		{"not found", domain.ErrItemNotFound, fiber.StatusNotFound, "ITEM_NOT_FOUND"},
		{"duplicate", domain.ErrDuplicateEntry, fiber.StatusConflict, "DUPLICATE_ENTRY"},
		{"precondition", domain.ErrBorrowLimitExceeded, fiber.StatusConflict, "BORROW_LIMIT_EXCEEDED"},
		{"consistency", fmt.Errorf("item 1: %w", domain.ErrStaleItem), fiber.StatusInternalServerError, ""},
		{"unknown", errors.New("driver: bad connection"), fiber.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return FromError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var got Response
			require.NoError(t, json.Unmarshal(body, &got))
			assert.False(t, got.Success)
			assert.Equal(t, tt.wantCode, got.Code)
			if tt.wantCode == "" {
				assert.Equal(t, GenericFailure, got.Error)
			}
		})
	}
}
