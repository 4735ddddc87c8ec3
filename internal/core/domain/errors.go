package domain

import "errors"

// Kind classifies a lending error for callers and the HTTP layer
type Kind int

const (
	// KindUnknown is anything that did not originate from the lending core (I/O, driver errors)
	KindUnknown Kind = iota
	// KindValidation marks malformed input or references to missing entities
	KindValidation
	// KindPrecondition marks a business rule that rejected the request
	KindPrecondition
	// KindConsistency marks a broken invariant; never user-facing
	KindConsistency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition_failed"
	case KindConsistency:
		return "consistency_violation"
	default:
		return "unknown"
	}
}

// Error is a typed lending failure. Two errors are equal under errors.Is when their codes match.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Code so wrapped copies still compare equal to the sentinels below
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation errors
var (
	ErrInvalidInput         = newError(KindValidation, "INVALID_INPUT", "invalid input")
	ErrItemNotFound         = newError(KindValidation, "ITEM_NOT_FOUND", "item not found")
	ErrCategoryNotFound     = newError(KindValidation, "CATEGORY_NOT_FOUND", "category not found")
	ErrBorrowerNotFound     = newError(KindValidation, "BORROWER_NOT_FOUND", "borrower not found")
	ErrRecordNotFound       = newError(KindValidation, "RECORD_NOT_FOUND", "borrow record not found")
	ErrReservationNotFound  = newError(KindValidation, "RESERVATION_NOT_FOUND", "reservation not found")
	ErrNotificationNotFound = newError(KindValidation, "NOTIFICATION_NOT_FOUND", "notification not found")
	ErrDuplicateEntry       = newError(KindValidation, "DUPLICATE_ENTRY", "an entry with the same unique key already exists")
)

// Precondition errors
var (
	ErrBorrowerInactive     = newError(KindPrecondition, "BORROWER_INACTIVE", "your membership is not active")
	ErrBorrowLimitExceeded  = newError(KindPrecondition, "BORROW_LIMIT_EXCEEDED", "you have reached your borrowing limit")
	ErrItemUnavailable      = newError(KindPrecondition, "ITEM_UNAVAILABLE", "this item has no copies available right now")
	ErrDuplicateBorrow      = newError(KindPrecondition, "DUPLICATE_BORROW", "you already have this item checked out")
	ErrRenewalLimitExceeded = newError(KindPrecondition, "RENEWAL_LIMIT_EXCEEDED", "this loan cannot be renewed again")
	ErrRecordOverdue        = newError(KindPrecondition, "RECORD_OVERDUE", "overdue loans cannot be renewed, please return the item")
	ErrInvalidState         = newError(KindPrecondition, "INVALID_STATE", "this action is not allowed in the current state")
	ErrDuplicateReservation = newError(KindPrecondition, "DUPLICATE_RESERVATION", "you already have an active reservation for this item")
	ErrItemAvailable        = newError(KindPrecondition, "ITEM_AVAILABLE", "this item is available, borrow it instead of reserving")
)

// Consistency violations
var (
	ErrCopyCountOverflow  = newError(KindConsistency, "COPY_COUNT_OVERFLOW", "available copies would exceed total copies")
	ErrInsufficientCopies = newError(KindConsistency, "INSUFFICIENT_COPIES", "no copy left to decrement")
	ErrStaleItem          = newError(KindConsistency, "STALE_ITEM", "item row changed outside its lock")
)

// KindOf reports the kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsConsistencyViolation is shorthand for KindOf(err) == KindConsistency
func IsConsistencyViolation(err error) bool {
	return KindOf(err) == KindConsistency
}
