package services

import (
	"context"
	"fmt"
	"log"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/core/domain"

	"github.com/google/uuid"
)

// ReservationManager owns the reservation queue of every item.
// Like the ledger, it runs inside a transaction that already holds the item lock.
type ReservationManager struct {
	ledger  *InventoryLedger
	trigger *NotificationTrigger
	policy  domain.Policy
	clock   domain.Clock
}

// NewReservationManager creates a new reservation manager
func NewReservationManager(ledger *InventoryLedger, trigger *NotificationTrigger, policy domain.Policy, clock domain.Clock) *ReservationManager {
	return &ReservationManager{
		ledger:  ledger,
		trigger: trigger,
		policy:  policy,
		clock:   clock,
	}
}

// ============================================================
// Reserve / Cancel
// ============================================================

// Reserve queues a borrower for an item
func (m *ReservationManager) Reserve(ctx context.Context, tx *repositories.Store, userID uint, item *models.Item) (*models.Reservation, error) {
	// 1. Borrower must exist and be active
	profile, err := tx.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, domain.ErrBorrowerNotFound)
	}
	if !profile.IsActive {
		return nil, domain.ErrBorrowerInactive
	}

	// 2. Reservations are for items the borrower cannot take right now
	lendable, err := m.LendableTo(ctx, tx, item, userID)
	if err != nil {
		return nil, err
	}
	if lendable && !m.policy.AllowReserveWhenAvailable {
		return nil, domain.ErrItemAvailable
	}

	// 3. One active reservation per (borrower, item)
	existing, err := tx.Reservations.FindActive(ctx, userID, item.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateReservation
	}

	// 4. Create with both dates fixed now
	now := m.clock.Now()
	reservation := &models.Reservation{
		ID:              uuid.New(),
		UserID:          userID,
		ItemID:          item.ID,
		ReservationDate: now,
		ExpiryDate:      now.Add(domain.Days(m.policy.ReservationDays)),
		Status:          models.ReservationStatusActive,
	}
	if err := tx.Reservations.Create(ctx, reservation); err != nil {
		return nil, err
	}

	// 5. A reservation on a lendable item can be served at once
	if lendable {
		promoted, err := m.PromoteNext(ctx, tx, item)
		if err != nil {
			return nil, err
		}
		for _, p := range promoted {
			if p.ID == reservation.ID {
				reservation = p
			}
		}
	}

	log.Printf("✅ Reservation created: %s (User: %d, Item: %d)", reservation.ID, userID, item.ID)
	reservation.Item = item
	return reservation, nil
}

// Cancel withdraws an active reservation. A cancelled ready hold frees its copy for the next in line.
func (m *ReservationManager) Cancel(ctx context.Context, tx *repositories.Store, reservation *models.Reservation, item *models.Item) error {
	if reservation.Status != models.ReservationStatusActive {
		return fmt.Errorf("%w: reservation is %s", domain.ErrInvalidState, reservation.Status)
	}

	wasHolding := reservation.Notified
	now := m.clock.Now()
	reservation.Status = models.ReservationStatusCancelled
	reservation.ClosedAt = &now
	if err := tx.Reservations.Save(ctx, reservation); err != nil {
		return err
	}

	if wasHolding {
		if _, err := m.PromoteNext(ctx, tx, item); err != nil {
			return err
		}
	}

	log.Printf("🚫 Reservation cancelled: %s (User: %d, Item: %d)", reservation.ID, reservation.UserID, item.ID)
	return nil
}

// ============================================================
// Promotion
// ============================================================

// PromoteNext hands free copies to the queue, oldest reservation first.
// At most one ready hold exists per copy on the shelf, so calling it again without a new free copy is a no-op.
func (m *ReservationManager) PromoteNext(ctx context.Context, tx *repositories.Store, item *models.Item) ([]*models.Reservation, error) {
	var promoted []*models.Reservation
	if !m.ledger.IsAvailable(item) {
		return promoted, nil
	}

	now := m.clock.Now()
	for {
		holds, err := tx.Reservations.CountHolds(ctx, item.ID, 0)
		if err != nil {
			return nil, err
		}
		if holds >= int64(item.AvailableCopies) {
			break
		}

		next, err := tx.Reservations.NextInQueue(ctx, item.ID, now)
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}

		notifiedAt := now
		next.Notified = true
		next.NotifiedAt = &notifiedAt
		if err := tx.Reservations.Save(ctx, next); err != nil {
			return nil, err
		}
		if err := m.trigger.ReservationReady(ctx, tx, next, item); err != nil {
			return nil, err
		}

		log.Printf("📣 Reservation ready: %s (User: %d, Item: %d)", next.ID, next.UserID, item.ID)
		promoted = append(promoted, next)
	}

	return promoted, nil
}

// LendableTo reports whether userID could borrow item now, counting copies held for other borrowers' ready reservations
func (m *ReservationManager) LendableTo(ctx context.Context, tx *repositories.Store, item *models.Item, userID uint) (bool, error) {
	if !m.ledger.IsAvailable(item) {
		return false, nil
	}
	if !m.policy.EnforceHolds {
		return true, nil
	}

	held, err := tx.Reservations.CountHolds(ctx, item.ID, userID)
	if err != nil {
		return false, err
	}
	return int64(item.AvailableCopies)-held > 0, nil
}

// Fulfill closes the borrower's active reservation on an item after a successful borrow
func (m *ReservationManager) Fulfill(ctx context.Context, tx *repositories.Store, userID, itemID uint) error {
	reservation, err := tx.Reservations.FindActive(ctx, userID, itemID)
	if err != nil || reservation == nil {
		return err
	}

	now := m.clock.Now()
	reservation.Status = models.ReservationStatusFulfilled
	reservation.ClosedAt = &now
	return tx.Reservations.Save(ctx, reservation)
}

// ============================================================
// Expiry
// ============================================================

// Expire closes one stale reservation and passes its held copy on.
// The caller reloads the reservation under the item lock; anything no longer active and past expiry is skipped.
func (m *ReservationManager) Expire(ctx context.Context, tx *repositories.Store, reservation *models.Reservation, item *models.Item) (expired bool, promoted []*models.Reservation, err error) {
	now := m.clock.Now()
	if reservation.Status != models.ReservationStatusActive || !reservation.IsExpired(now) {
		return false, nil, nil
	}

	wasHolding := reservation.Notified
	reservation.Status = models.ReservationStatusExpired
	reservation.ClosedAt = &now
	if err := tx.Reservations.Save(ctx, reservation); err != nil {
		return false, nil, err
	}
	if err := m.trigger.ReservationExpired(ctx, tx, reservation, item); err != nil {
		return false, nil, err
	}

	if wasHolding {
		promoted, err = m.PromoteNext(ctx, tx, item)
		if err != nil {
			return false, nil, err
		}
	}
	return true, promoted, nil
}
