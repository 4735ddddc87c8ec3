package services

import (
	"context"
	"fmt"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/core/domain"
)

// NotificationTrigger turns lending events into notification rows.
// Delivery (mail, push) is somebody else's job.
type NotificationTrigger struct {
	clock domain.Clock
}

// NewNotificationTrigger creates a new notification trigger
func NewNotificationTrigger(clock domain.Clock) *NotificationTrigger {
	return &NotificationTrigger{clock: clock}
}

// ============================================================
// Loan events
// ============================================================

// BorrowCreated is only called when the policy asks for borrow notices
func (t *NotificationTrigger) BorrowCreated(ctx context.Context, tx *repositories.Store, record *models.BorrowRecord, item *models.Item) error {
	return t.emit(ctx, tx, &models.Notification{
		UserID:         record.UserID,
		Title:          "Item borrowed",
		Message:        fmt.Sprintf("You borrowed %s. It is due on %s.", titleOf(item, record.ItemID), dateOf(record)),
		Type:           models.NotificationGeneral,
		BorrowRecordID: &record.ID,
		ItemID:         &record.ItemID,
	})
}

// ReturnCompleted confirms a return
func (t *NotificationTrigger) ReturnCompleted(ctx context.Context, tx *repositories.Store, record *models.BorrowRecord, item *models.Item) error {
	return t.emit(ctx, tx, &models.Notification{
		UserID:         record.UserID,
		Title:          "Return confirmed",
		Message:        fmt.Sprintf("Thank you for returning %s.", titleOf(item, record.ItemID)),
		Type:           models.NotificationReturnConfirmation,
		BorrowRecordID: &record.ID,
		ItemID:         &record.ItemID,
	})
}

// FineAssessed reports the frozen fine of a late return
func (t *NotificationTrigger) FineAssessed(ctx context.Context, tx *repositories.Store, record *models.BorrowRecord, item *models.Item) error {
	return t.emit(ctx, tx, &models.Notification{
		UserID:         record.UserID,
		Title:          "Late return fine",
		Message:        fmt.Sprintf("%s was returned late. A fine of %.2f has been assessed.", titleOf(item, record.ItemID), record.FineAmount),
		Type:           models.NotificationFineNotice,
		BorrowRecordID: &record.ID,
		ItemID:         &record.ItemID,
	})
}

// DueSoon reminds a borrower of an upcoming due date
func (t *NotificationTrigger) DueSoon(ctx context.Context, tx *repositories.Store, record *models.BorrowRecord, item *models.Item) error {
	return t.emit(ctx, tx, &models.Notification{
		UserID:         record.UserID,
		Title:          "Due date approaching",
		Message:        fmt.Sprintf("%s is due on %s.", titleOf(item, record.ItemID), dateOf(record)),
		Type:           models.NotificationDueReminder,
		BorrowRecordID: &record.ID,
		ItemID:         &record.ItemID,
	})
}

// Overdue tells a borrower the loan is past due
func (t *NotificationTrigger) Overdue(ctx context.Context, tx *repositories.Store, record *models.BorrowRecord, item *models.Item, daysOverdue int) error {
	return t.emit(ctx, tx, &models.Notification{
		UserID:         record.UserID,
		Title:          "Item overdue",
		Message:        fmt.Sprintf("%s was due on %s and is %d day(s) overdue. Please return it.", titleOf(item, record.ItemID), dateOf(record), daysOverdue),
		Type:           models.NotificationOverdue,
		BorrowRecordID: &record.ID,
		ItemID:         &record.ItemID,
	})
}

// ============================================================
// Reservation events
// ============================================================

// ReservationReady tells the head of the queue a copy is waiting
func (t *NotificationTrigger) ReservationReady(ctx context.Context, tx *repositories.Store, reservation *models.Reservation, item *models.Item) error {
	return t.emit(ctx, tx, &models.Notification{
		UserID: reservation.UserID,
		Title:  "Reservation ready",
		Message: fmt.Sprintf("%s is available for you. Borrow it before %s.",
			titleOf(item, reservation.ItemID), reservation.ExpiryDate.Format("2006-01-02 15:04 MST")),
		Type:   models.NotificationReservationReady,
		ItemID: &reservation.ItemID,
	})
}

// ReservationExpired tells a borrower the reservation lapsed
func (t *NotificationTrigger) ReservationExpired(ctx context.Context, tx *repositories.Store, reservation *models.Reservation, item *models.Item) error {
	return t.emit(ctx, tx, &models.Notification{
		UserID:  reservation.UserID,
		Title:   "Reservation expired",
		Message: fmt.Sprintf("Your reservation for %s has expired.", titleOf(item, reservation.ItemID)),
		Type:    models.NotificationGeneral,
		ItemID:  &reservation.ItemID,
	})
}

func (t *NotificationTrigger) emit(ctx context.Context, tx *repositories.Store, n *models.Notification) error {
	n.CreatedAt = t.clock.Now()
	if err := tx.Notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create %s notification: %w", n.Type, err)
	}
	return nil
}

func titleOf(item *models.Item, itemID uint) string {
	if item == nil || item.Title == "" {
		return fmt.Sprintf("item #%d", itemID)
	}
	return fmt.Sprintf("%q", item.Title)
}

func dateOf(record *models.BorrowRecord) string {
	return record.DueDate.Format("2006-01-02")
}
