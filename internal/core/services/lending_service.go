package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/core/domain"
	"lendinghub/internal/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LendingService is the entry point collaborators (HTTP, CLI, scheduler) call.
// Every mutation runs in one transaction that starts by locking the affected item.
type LendingService struct {
	store        *repositories.Store
	ledger       *InventoryLedger
	engine       *BorrowingEngine
	reservations *ReservationManager
	trigger      *NotificationTrigger
	policy       domain.Policy
	clock        domain.Clock
}

// NewLendingService wires the lending core over store
func NewLendingService(store *repositories.Store, policy domain.Policy, clock domain.Clock) *LendingService {
	ledger := NewInventoryLedger()
	trigger := NewNotificationTrigger(clock)
	reservations := NewReservationManager(ledger, trigger, policy, clock)
	engine := NewBorrowingEngine(ledger, reservations, trigger, policy, clock)

	return &LendingService{
		store:        store,
		ledger:       ledger,
		engine:       engine,
		reservations: reservations,
		trigger:      trigger,
		policy:       policy,
		clock:        clock,
	}
}

// Policy returns the lending policy in force
func (s *LendingService) Policy() domain.Policy {
	return s.policy
}

// Clock returns the clock the lending core reads "now" from
func (s *LendingService) Clock() domain.Clock {
	return s.clock
}

// ReturnResult is the outcome of a return
type ReturnResult struct {
	Record       *models.BorrowRecord `json:"record"`
	FineAssessed float64              `json:"fine_assessed"`
}

// ExpirySweepResult lists what an expiry sweep changed
type ExpirySweepResult struct {
	ExpiredReservations []*models.Reservation `json:"expired_reservations"`
	Promoted            []*models.Reservation `json:"promoted"`
}

// DueReminderSweepResult counts what a due-reminder sweep emitted
type DueReminderSweepResult struct {
	NotificationsCreated int `json:"notifications_created"`
}

// ============================================================
// Loans
// ============================================================

// Borrow checks out one copy of itemID to borrowerID
func (s *LendingService) Borrow(ctx context.Context, borrowerID, itemID, issuerID uint) (*models.BorrowRecord, error) {
	return s.BorrowWith(ctx, itemID, BorrowInput{BorrowerID: borrowerID, IssuerID: optionalID(issuerID)})
}

// BorrowWith is Borrow with a custom loan length and issue notes
func (s *LendingService) BorrowWith(ctx context.Context, itemID uint, input BorrowInput) (record *models.BorrowRecord, err error) {
	defer func(start time.Time) { metrics.Observe("borrow", start, err) }(time.Now())

	err = s.withItem(ctx, itemID, func(tx *repositories.Store, item *models.Item) error {
		record, err = s.engine.Borrow(ctx, tx, input, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Renew extends an open loan
func (s *LendingService) Renew(ctx context.Context, recordID uuid.UUID) (record *models.BorrowRecord, err error) {
	defer func(start time.Time) { metrics.Observe("renew", start, err) }(time.Now())

	err = s.withRecord(ctx, recordID, func(tx *repositories.Store, r *models.BorrowRecord, item *models.Item) error {
		if err := s.engine.Renew(ctx, tx, r); err != nil {
			return err
		}
		r.Item = item
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ReturnItem closes a loan, assesses the fine and hands the copy to the reservation queue
func (s *LendingService) ReturnItem(ctx context.Context, recordID uuid.UUID, receiverID uint, notes string) (result *ReturnResult, err error) {
	defer func(start time.Time) { metrics.Observe("return", start, err) }(time.Now())

	err = s.withRecord(ctx, recordID, func(tx *repositories.Store, r *models.BorrowRecord, item *models.Item) error {
		fine, err := s.engine.ReturnItem(ctx, tx, r, item, optionalID(receiverID), notes)
		if err != nil {
			return err
		}
		result = &ReturnResult{Record: r, FineAssessed: fine}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkLost closes a loan whose copy will not come back
func (s *LendingService) MarkLost(ctx context.Context, recordID uuid.UUID) (record *models.BorrowRecord, err error) {
	defer func(start time.Time) { metrics.Observe("mark_lost", start, err) }(time.Now())

	err = s.withRecord(ctx, recordID, func(tx *repositories.Store, r *models.BorrowRecord, item *models.Item) error {
		if err := s.engine.MarkLost(ctx, tx, r); err != nil {
			return err
		}
		r.Item = item
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// PayFine marks the fine of a closed loan as paid
func (s *LendingService) PayFine(ctx context.Context, recordID uuid.UUID) (record *models.BorrowRecord, err error) {
	defer func(start time.Time) { metrics.Observe("pay_fine", start, err) }(time.Now())

	err = s.withRecord(ctx, recordID, func(tx *repositories.Store, r *models.BorrowRecord, item *models.Item) error {
		if err := s.engine.PayFine(ctx, tx, r); err != nil {
			return err
		}
		r.Item = item
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetRecord returns one borrow record
func (s *LendingService) GetRecord(ctx context.Context, recordID uuid.UUID) (*models.BorrowRecord, error) {
	record, err := s.store.Records.GetByID(ctx, recordID)
	if err != nil {
		return nil, notFound(err, domain.ErrRecordNotFound)
	}
	record.Shown = record.DisplayStatus(s.clock.Now())
	return record, nil
}

// ListLoans lists a borrower's records, newest first
func (s *LendingService) ListLoans(ctx context.Context, userID uint, offset, limit int) ([]models.BorrowRecord, int64, error) {
	records, total, err := s.store.Records.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	now := s.clock.Now()
	for i := range records {
		records[i].Shown = records[i].DisplayStatus(now)
	}
	return records, total, nil
}

// ============================================================
// Reservations
// ============================================================

// Reserve queues borrowerID for itemID
func (s *LendingService) Reserve(ctx context.Context, borrowerID, itemID uint) (reservation *models.Reservation, err error) {
	defer func(start time.Time) { metrics.Observe("reserve", start, err) }(time.Now())

	err = s.withItem(ctx, itemID, func(tx *repositories.Store, item *models.Item) error {
		reservation, err = s.reservations.Reserve(ctx, tx, borrowerID, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// CancelReservation withdraws an active reservation
func (s *LendingService) CancelReservation(ctx context.Context, reservationID uuid.UUID) (err error) {
	defer func(start time.Time) { metrics.Observe("cancel_reservation", start, err) }(time.Now())

	return s.withReservation(ctx, reservationID, func(tx *repositories.Store, r *models.Reservation, item *models.Item) error {
		return s.reservations.Cancel(ctx, tx, r, item)
	})
}

// GetReservation returns one reservation
func (s *LendingService) GetReservation(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.store.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, notFound(err, domain.ErrReservationNotFound)
	}
	return reservation, nil
}

// ListReservations lists a borrower's reservations, newest first
func (s *LendingService) ListReservations(ctx context.Context, userID uint) ([]models.Reservation, error) {
	return s.store.Reservations.ListByUser(ctx, userID)
}

// ============================================================
// Sweeps
// ============================================================

// RunExpirySweep expires every active reservation past its expiry date and re-promotes freed holds.
// Each reservation is handled in its own item-locked transaction; one that changed in between is skipped.
func (s *LendingService) RunExpirySweep(ctx context.Context) (result *ExpirySweepResult, err error) {
	defer func(start time.Time) { metrics.Observe("expiry_sweep", start, err) }(time.Now())

	candidates, err := s.store.Reservations.ListExpiredActive(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}

	result = &ExpirySweepResult{
		ExpiredReservations: []*models.Reservation{},
		Promoted:            []*models.Reservation{},
	}
	var errs []error
	for _, candidate := range candidates {
		var expired bool
		var promoted []*models.Reservation
		var reservation *models.Reservation
		err := s.withReservation(ctx, candidate.ID, func(tx *repositories.Store, r *models.Reservation, item *models.Item) error {
			var err error
			expired, promoted, err = s.reservations.Expire(ctx, tx, r, item)
			reservation = r
			return err
		})
		if err != nil {
			log.Printf("❌ Expiry sweep: reservation %s: %v", candidate.ID, err)
			errs = append(errs, err)
			continue
		}
		if expired {
			result.ExpiredReservations = append(result.ExpiredReservations, reservation)
			result.Promoted = append(result.Promoted, promoted...)
		}
	}

	metrics.SweepChanges("expiry", "expired", len(result.ExpiredReservations))
	metrics.SweepChanges("expiry", "promoted", len(result.Promoted))
	if len(result.ExpiredReservations) > 0 {
		log.Printf("🧹 Expiry sweep: %d expired, %d promoted", len(result.ExpiredReservations), len(result.Promoted))
	}
	return result, errors.Join(errs...)
}

// RunDueReminderSweep notifies borrowers of loans due within thresholdDays and of overdue loans.
// A record gets one reminder per due date and one overdue notice in total, so reruns are no-ops.
func (s *LendingService) RunDueReminderSweep(ctx context.Context, thresholdDays int) (result *DueReminderSweepResult, err error) {
	defer func(start time.Time) { metrics.Observe("due_reminder_sweep", start, err) }(time.Now())

	if thresholdDays < 0 {
		return nil, fmt.Errorf("%w: threshold days must not be negative", domain.ErrInvalidInput)
	}

	horizon := s.clock.Now().Add(domain.Days(thresholdDays))
	candidates, err := s.store.Records.ListOpenDueBy(ctx, horizon)
	if err != nil {
		return nil, err
	}

	result = &DueReminderSweepResult{}
	var errs []error
	for _, candidate := range candidates {
		var sent bool
		err := s.withRecord(ctx, candidate.ID, func(tx *repositories.Store, r *models.BorrowRecord, item *models.Item) error {
			var err error
			sent, err = s.engine.NotifyOverdue(ctx, tx, r, item)
			if err != nil || sent {
				return err
			}
			sent, err = s.engine.RemindDue(ctx, tx, r, item)
			return err
		})
		if err != nil {
			log.Printf("❌ Due reminder sweep: record %s: %v", candidate.ID, err)
			errs = append(errs, err)
			continue
		}
		if sent {
			result.NotificationsCreated++
		}
	}

	metrics.SweepChanges("due_reminder", "notified", result.NotificationsCreated)
	if result.NotificationsCreated > 0 {
		log.Printf("📅 Due reminder sweep: %d notifications", result.NotificationsCreated)
	}
	return result, errors.Join(errs...)
}

// ============================================================
// Notifications (inbox)
// ============================================================

// ListNotifications lists a user's notifications, newest first
func (s *LendingService) ListNotifications(ctx context.Context, userID uint, unreadOnly bool, offset, limit int) ([]models.Notification, int64, error) {
	return s.store.Notifications.ListByUser(ctx, userID, unreadOnly, offset, limit)
}

// MarkNotificationRead flags one of the user's notifications as read
func (s *LendingService) MarkNotificationRead(ctx context.Context, userID, notificationID uint) error {
	ok, err := s.store.Notifications.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// ============================================================
// Transaction scopes
// ============================================================

// withItem runs fn in a transaction holding the lock on itemID
func (s *LendingService) withItem(ctx context.Context, itemID uint, fn func(tx *repositories.Store, item *models.Item) error) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		item, err := tx.Items.LockByID(ctx, itemID)
		if err != nil {
			return notFound(err, domain.ErrItemNotFound)
		}
		return fn(tx, item)
	})
}

// withRecord locks the record's item, then the record itself, and hands fn the locked copy
func (s *LendingService) withRecord(ctx context.Context, recordID uuid.UUID, fn func(tx *repositories.Store, record *models.BorrowRecord, item *models.Item) error) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		record, err := tx.Records.GetByID(ctx, recordID)
		if err != nil {
			return notFound(err, domain.ErrRecordNotFound)
		}
		item, err := tx.Items.LockByID(ctx, record.ItemID)
		if err != nil {
			return notFound(err, domain.ErrItemNotFound)
		}
		record, err = tx.Records.LockByID(ctx, recordID)
		if err != nil {
			return notFound(err, domain.ErrRecordNotFound)
		}
		return fn(tx, record, item)
	})
}

// withReservation locks the reservation's item, then the reservation itself
func (s *LendingService) withReservation(ctx context.Context, reservationID uuid.UUID, fn func(tx *repositories.Store, reservation *models.Reservation, item *models.Item) error) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		reservation, err := tx.Reservations.GetByID(ctx, reservationID)
		if err != nil {
			return notFound(err, domain.ErrReservationNotFound)
		}
		item, err := tx.Items.LockByID(ctx, reservation.ItemID)
		if err != nil {
			return notFound(err, domain.ErrItemNotFound)
		}
		reservation, err = tx.Reservations.LockByID(ctx, reservationID)
		if err != nil {
			return notFound(err, domain.ErrReservationNotFound)
		}
		return fn(tx, reservation, item)
	})
}

// notFound maps gorm.ErrRecordNotFound to the given lending error
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
