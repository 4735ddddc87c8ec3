package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/core/domain"

	"github.com/google/uuid"
)

// BorrowingEngine owns borrow records: it opens, renews and closes them and computes fines.
// Copy counts go through the ledger, queue promotion through the reservation manager.
type BorrowingEngine struct {
	ledger       *InventoryLedger
	reservations *ReservationManager
	trigger      *NotificationTrigger
	policy       domain.Policy
	clock        domain.Clock
}

// NewBorrowingEngine creates a new borrowing engine
func NewBorrowingEngine(ledger *InventoryLedger, reservations *ReservationManager, trigger *NotificationTrigger, policy domain.Policy, clock domain.Clock) *BorrowingEngine {
	return &BorrowingEngine{
		ledger:       ledger,
		reservations: reservations,
		trigger:      trigger,
		policy:       policy,
		clock:        clock,
	}
}

// BorrowInput describes one checkout
type BorrowInput struct {
	BorrowerID uint
	IssuerID   *uint
	DueDays    int // 0 means policy.LoanDays
	Notes      string
}

// ============================================================
// Borrow
// ============================================================

// Borrow checks a copy of item out to the borrower. item must be locked in tx.
func (e *BorrowingEngine) Borrow(ctx context.Context, tx *repositories.Store, input BorrowInput, item *models.Item) (*models.BorrowRecord, error) {
	if input.DueDays < 0 {
		return nil, fmt.Errorf("%w: due days must not be negative", domain.ErrInvalidInput)
	}

	// 1. Borrower (locked so concurrent borrows of different items respect the limit)
	profile, err := tx.Profiles.LockByUserID(ctx, input.BorrowerID)
	if err != nil {
		return nil, notFound(err, domain.ErrBorrowerNotFound)
	}
	if !profile.IsActive {
		return nil, domain.ErrBorrowerInactive
	}

	// 2. One open record per (borrower, item)
	open, err := tx.Records.FindOpen(ctx, input.BorrowerID, item.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, domain.ErrDuplicateBorrow
	}

	// 3. Borrowing limit
	count, err := tx.Records.CountOpenByUser(ctx, input.BorrowerID)
	if err != nil {
		return nil, err
	}
	if count >= int64(profile.MaxBooksAllowed) {
		return nil, domain.ErrBorrowLimitExceeded
	}

	// 4. Availability, including copies held for somebody else's ready reservation
	lendable, err := e.reservations.LendableTo(ctx, tx, item, input.BorrowerID)
	if err != nil {
		return nil, err
	}
	if !lendable {
		return nil, domain.ErrItemUnavailable
	}

	// 5. Take the copy, then write the record
	if err := e.ledger.DecrementCopy(ctx, tx, item); err != nil {
		return nil, err
	}

	dueDays := input.DueDays
	if dueDays == 0 {
		dueDays = e.policy.LoanDays
	}
	now := e.clock.Now()
	record := &models.BorrowRecord{
		ID:           uuid.New(),
		UserID:       input.BorrowerID,
		ItemID:       item.ID,
		BorrowDate:   now,
		DueDate:      now.Add(domain.Days(dueDays)),
		Status:       models.RecordStatusBorrowed,
		RenewalCount: 0,
		MaxRenewals:  e.policy.MaxRenewals,
		IssuedBy:     input.IssuerID,
		IssueNotes:   strings.TrimSpace(input.Notes),
	}
	if err := tx.Records.Create(ctx, record); err != nil {
		return nil, err
	}

	// 6. Close the borrower's own reservation if this borrow served it
	if err := e.reservations.Fulfill(ctx, tx, input.BorrowerID, item.ID); err != nil {
		return nil, err
	}

	if e.policy.NotifyOnBorrow {
		if err := e.trigger.BorrowCreated(ctx, tx, record, item); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Borrowed: record %s (User: %d, Item: %d, due %s)", record.ID, record.UserID, item.ID, record.DueDate.Format("2006-01-02"))
	record.Item = item
	return record, nil
}

// ============================================================
// Renew
// ============================================================

// Renew pushes the due date out by policy.RenewalDays
func (e *BorrowingEngine) Renew(ctx context.Context, tx *repositories.Store, record *models.BorrowRecord) error {
	if record.Status != models.RecordStatusBorrowed {
		return fmt.Errorf("%w: record is %s", domain.ErrInvalidState, record.Status)
	}
	if record.RenewalCount >= record.MaxRenewals {
		return domain.ErrRenewalLimitExceeded
	}
	if record.IsOverdue(e.clock.Now()) {
		return domain.ErrRecordOverdue
	}

	record.DueDate = record.DueDate.Add(domain.Days(e.policy.RenewalDays))
	record.RenewalCount++
	if err := tx.Records.Save(ctx, record); err != nil {
		return err
	}

	log.Printf("🔁 Renewed: record %s (%d/%d, due %s)", record.ID, record.RenewalCount, record.MaxRenewals, record.DueDate.Format("2006-01-02"))
	return nil
}

// ============================================================
// Return / Lost / Fine
// ============================================================

// ReturnItem closes the record, freezes the fine and puts the copy back.
// The freed copy is offered to the reservation queue before the borrower is notified.
func (e *BorrowingEngine) ReturnItem(ctx context.Context, tx *repositories.Store, record *models.BorrowRecord, item *models.Item, receiverID *uint, notes string) (float64, error) {
	if record.Status != models.RecordStatusBorrowed {
		return 0, fmt.Errorf("%w: record is %s", domain.ErrInvalidState, record.Status)
	}

	now := e.clock.Now()
	fine := e.CalculateFine(record, now)

	record.Status = models.RecordStatusReturned
	record.ReturnDate = &now
	record.ReturnedTo = receiverID
	record.ReturnNotes = strings.TrimSpace(notes)
	record.FineAmount = fine
	if err := tx.Records.Save(ctx, record); err != nil {
		return 0, err
	}

	if err := e.ledger.IncrementCopy(ctx, tx, item); err != nil {
		return 0, err
	}
	if _, err := e.reservations.PromoteNext(ctx, tx, item); err != nil {
		return 0, err
	}

	if err := e.trigger.ReturnCompleted(ctx, tx, record, item); err != nil {
		return 0, err
	}
	if fine > 0 {
		if err := e.trigger.FineAssessed(ctx, tx, record, item); err != nil {
			return 0, err
		}
	}

	log.Printf("✅ Returned: record %s (Item: %d, fine %.2f)", record.ID, item.ID, fine)
	record.Item = item
	return fine, nil
}

// MarkLost closes the record without returning the copy. Writing the copy off
// the inventory is a separate ledger call.
func (e *BorrowingEngine) MarkLost(ctx context.Context, tx *repositories.Store, record *models.BorrowRecord) error {
	if record.Status != models.RecordStatusBorrowed {
		return fmt.Errorf("%w: record is %s", domain.ErrInvalidState, record.Status)
	}

	record.Status = models.RecordStatusLost
	if err := tx.Records.Save(ctx, record); err != nil {
		return err
	}

	log.Printf("⚠️ Marked lost: record %s (User: %d, Item: %d)", record.ID, record.UserID, record.ItemID)
	return nil
}

// PayFine flags an assessed fine as settled
func (e *BorrowingEngine) PayFine(ctx context.Context, tx *repositories.Store, record *models.BorrowRecord) error {
	if record.FineAmount <= 0 || record.FinePaid {
		return fmt.Errorf("%w: no outstanding fine", domain.ErrInvalidState)
	}

	record.FinePaid = true
	return tx.Records.Save(ctx, record)
}

// CalculateFine is days overdue × daily rate, 0 when returned on time
func (e *BorrowingEngine) CalculateFine(record *models.BorrowRecord, now time.Time) float64 {
	return domain.Fine(domain.DaysOverdue(record.DueDate, now), e.policy.DailyFineRate)
}

// ============================================================
// Sweep bookkeeping
// ============================================================

// RemindDue sends at most one due reminder per due date. Returns whether one was sent.
func (e *BorrowingEngine) RemindDue(ctx context.Context, tx *repositories.Store, record *models.BorrowRecord, item *models.Item) (bool, error) {
	if !record.IsOpen() || record.IsOverdue(e.clock.Now()) {
		return false, nil
	}
	if record.DueReminderFor != nil && record.DueReminderFor.Equal(record.DueDate) {
		return false, nil
	}

	if err := e.trigger.DueSoon(ctx, tx, record, item); err != nil {
		return false, err
	}
	due := record.DueDate
	record.DueReminderFor = &due
	return true, tx.Records.Save(ctx, record)
}

// NotifyOverdue sends at most one overdue notice per record. Returns whether one was sent.
func (e *BorrowingEngine) NotifyOverdue(ctx context.Context, tx *repositories.Store, record *models.BorrowRecord, item *models.Item) (bool, error) {
	now := e.clock.Now()
	if !record.IsOpen() || !record.IsOverdue(now) || record.OverdueNotified {
		return false, nil
	}

	if err := e.trigger.Overdue(ctx, tx, record, item, domain.DaysOverdue(record.DueDate, now)); err != nil {
		return false, err
	}
	record.OverdueNotified = true
	return true, tx.Records.Save(ctx, record)
}
