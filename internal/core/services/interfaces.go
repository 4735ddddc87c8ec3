package services

import (
	"context"

	"lendinghub/internal/adapters/persistence/models"

	"github.com/google/uuid"
)

// Note: LendingService implementation is in lending_service.go
// Note: CatalogService implementation is in catalog_service.go

// Lending is the surface collaborators call into: web layer, scheduler, admin tooling
type Lending interface {
	Sweeper

	Borrow(ctx context.Context, borrowerID, itemID, issuerID uint) (*models.BorrowRecord, error)
	BorrowWith(ctx context.Context, itemID uint, input BorrowInput) (*models.BorrowRecord, error)
	Renew(ctx context.Context, recordID uuid.UUID) (*models.BorrowRecord, error)
	ReturnItem(ctx context.Context, recordID uuid.UUID, receiverID uint, notes string) (*ReturnResult, error)
	MarkLost(ctx context.Context, recordID uuid.UUID) (*models.BorrowRecord, error)
	PayFine(ctx context.Context, recordID uuid.UUID) (*models.BorrowRecord, error)
	GetRecord(ctx context.Context, recordID uuid.UUID) (*models.BorrowRecord, error)
	ListLoans(ctx context.Context, userID uint, offset, limit int) ([]models.BorrowRecord, int64, error)

	Reserve(ctx context.Context, borrowerID, itemID uint) (*models.Reservation, error)
	CancelReservation(ctx context.Context, reservationID uuid.UUID) error
	GetReservation(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error)
	ListReservations(ctx context.Context, userID uint) ([]models.Reservation, error)

	ListNotifications(ctx context.Context, userID uint, unreadOnly bool, offset, limit int) ([]models.Notification, int64, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID uint) error
}

var _ Lending = (*LendingService)(nil)
