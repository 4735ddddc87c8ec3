package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesCode(t *testing.T) {
	wrapped := fmt.Errorf("item 7 decrement: %w", ErrInsufficientCopies)

	assert.ErrorIs(t, wrapped, ErrInsufficientCopies)
	assert.NotErrorIs(t, wrapped, ErrCopyCountOverflow)
	assert.ErrorIs(t, &Error{Code: "ITEM_UNAVAILABLE"}, ErrItemUnavailable)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{ErrItemNotFound, KindValidation},
		{fmt.Errorf("%w: bad isbn", ErrInvalidInput), KindValidation},
		{ErrBorrowLimitExceeded, KindPrecondition},
		{ErrStaleItem, KindConsistency},
		{errors.New("connection reset"), KindUnknown},
		{nil, KindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "%v", tt.err)
	}

	assert.True(t, IsConsistencyViolation(fmt.Errorf("wrap: %w", ErrCopyCountOverflow)))
	assert.False(t, IsConsistencyViolation(ErrItemUnavailable))
	assert.Equal(t, "precondition_failed", KindPrecondition.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
