package services

import (
	"testing"
	"time"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserve_Rules(t *testing.T) {
	f := newFixture(t)
	holder := f.borrower("holder")
	userID := f.borrower("waiter")
	itemID := f.item(1)

	// Available items are borrowed, not reserved
	_, err := f.lending.Reserve(f.ctx, userID, itemID)
	assert.ErrorIs(t, err, domain.ErrItemAvailable)

	_, err = f.lending.Borrow(f.ctx, holder, itemID, 0)
	require.NoError(t, err)

	reservation, err := f.lending.Reserve(f.ctx, userID, itemID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusActive, reservation.Status)
	assert.False(t, reservation.Notified)
	assert.WithinDuration(t, epoch, reservation.ReservationDate, 0)
	assert.WithinDuration(t, epoch.Add(7*24*time.Hour), reservation.ExpiryDate, 0)

	_, err = f.lending.Reserve(f.ctx, userID, itemID)
	assert.ErrorIs(t, err, domain.ErrDuplicateReservation)

	_, err = f.lending.Reserve(f.ctx, userID, 9999)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestReserve_WhenAvailableAllowed(t *testing.T) {
	f := newFixture(t, func(p *domain.Policy) { p.AllowReserveWhenAvailable = true })
	userID := f.borrower("eager")
	itemID := f.item(1)

	reservation, err := f.lending.Reserve(f.ctx, userID, itemID)
	require.NoError(t, err)
	assert.True(t, reservation.Notified)
	assert.Equal(t, int64(1), f.notifications(userID, models.NotificationReservationReady))

	// The held copy is kept for the reserver
	other := f.borrower("other")
	_, err = f.lending.Borrow(f.ctx, other, itemID, 0)
	assert.ErrorIs(t, err, domain.ErrItemUnavailable)

	record, err := f.lending.Borrow(f.ctx, userID, itemID, 0)
	require.NoError(t, err)
	assert.Equal(t, userID, record.UserID)
	assert.Equal(t, models.ReservationStatusFulfilled, f.reservation(reservation).Status)
}

func TestPromotion_FIFO(t *testing.T) {
	f := newFixture(t)
	holder := f.borrower("holder")
	first := f.borrower("first")
	second := f.borrower("second")
	bystander := f.borrower("bystander")
	itemID := f.item(1)
	otherID := f.item(1)

	record, err := f.lending.Borrow(f.ctx, holder, itemID, 0)
	require.NoError(t, err)
	_, err = f.lending.Borrow(f.ctx, holder, otherID, 0)
	require.NoError(t, err)

	// A queue on another item interleaves with this one
	r1, err := f.lending.Reserve(f.ctx, first, itemID)
	require.NoError(t, err)
	f.advance(time.Minute)
	unrelated, err := f.lending.Reserve(f.ctx, bystander, otherID)
	require.NoError(t, err)
	f.advance(time.Minute)
	r2, err := f.lending.Reserve(f.ctx, second, itemID)
	require.NoError(t, err)

	_, err = f.lending.ReturnItem(f.ctx, record.ID, 0, "")
	require.NoError(t, err)

	got1, got2 := f.reservation(r1), f.reservation(r2)
	assert.True(t, got1.Notified)
	require.NotNil(t, got1.NotifiedAt)
	assert.False(t, got2.Notified)
	assert.Equal(t, int64(1), f.notifications(first, models.NotificationReservationReady))
	assert.Zero(t, f.notifications(second, models.NotificationReservationReady))
	assert.False(t, f.reservation(unrelated).Notified)
	assert.Zero(t, f.notifications(bystander, models.NotificationReservationReady))

	// The ledger does not reserve the copy, the hold does
	f.requireCopies(itemID, 1, 1, models.ItemStatusAvailable)
	_, err = f.lending.Borrow(f.ctx, second, itemID, 0)
	assert.ErrorIs(t, err, domain.ErrItemUnavailable)

	_, err = f.lending.Borrow(f.ctx, first, itemID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusFulfilled, f.reservation(r1).Status)
	assert.Equal(t, models.ReservationStatusActive, f.reservation(r2).Status)
}

func TestPromotion_WithoutHolds(t *testing.T) {
	f := newFixture(t, func(p *domain.Policy) { p.EnforceHolds = false })
	holder := f.borrower("holder")
	waiter := f.borrower("waiter")
	walkIn := f.borrower("walkin")
	itemID := f.item(1)

	record, err := f.lending.Borrow(f.ctx, holder, itemID, 0)
	require.NoError(t, err)
	_, err = f.lending.Reserve(f.ctx, waiter, itemID)
	require.NoError(t, err)
	_, err = f.lending.ReturnItem(f.ctx, record.ID, 0, "")
	require.NoError(t, err)

	// First come, first served
	_, err = f.lending.Borrow(f.ctx, walkIn, itemID, 0)
	require.NoError(t, err)
	f.requireCopies(itemID, 0, 1, models.ItemStatusBorrowed)
}

func TestCancelReservation(t *testing.T) {
	f := newFixture(t)
	holder := f.borrower("holder")
	first := f.borrower("first")
	second := f.borrower("second")
	itemID := f.item(1)

	record, err := f.lending.Borrow(f.ctx, holder, itemID, 0)
	require.NoError(t, err)
	r1, err := f.lending.Reserve(f.ctx, first, itemID)
	require.NoError(t, err)
	f.advance(time.Minute)
	r2, err := f.lending.Reserve(f.ctx, second, itemID)
	require.NoError(t, err)

	_, err = f.lending.ReturnItem(f.ctx, record.ID, 0, "")
	require.NoError(t, err)
	require.True(t, f.reservation(r1).Notified)

	// Cancelling a ready hold passes the copy on
	require.NoError(t, f.lending.CancelReservation(f.ctx, r1.ID))
	got1 := f.reservation(r1)
	assert.Equal(t, models.ReservationStatusCancelled, got1.Status)
	assert.NotNil(t, got1.ClosedAt)
	assert.True(t, f.reservation(r2).Notified)

	err = f.lending.CancelReservation(f.ctx, r1.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// A cancelled reservation can be placed again
	_, err = f.lending.Borrow(f.ctx, second, itemID, 0)
	require.NoError(t, err)
	_, err = f.lending.Reserve(f.ctx, first, itemID)
	require.NoError(t, err)
}

func TestExpirySweep(t *testing.T) {
	f := newFixture(t)
	holder := f.borrower("holder")
	early := f.borrower("early")
	late := f.borrower("late")
	itemID := f.item(1)

	record, err := f.lending.Borrow(f.ctx, holder, itemID, 0)
	require.NoError(t, err)
	rEarly, err := f.lending.Reserve(f.ctx, early, itemID)
	require.NoError(t, err)

	f.advance(5 * 24 * time.Hour)
	rLate, err := f.lending.Reserve(f.ctx, late, itemID)
	require.NoError(t, err)
	_, err = f.lending.ReturnItem(f.ctx, record.ID, 0, "")
	require.NoError(t, err)
	require.True(t, f.reservation(rEarly).Notified)

	// Nothing is stale yet
	result, err := f.lending.RunExpirySweep(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, result.ExpiredReservations)

	// The early hold lapses; the copy moves to the next in line
	f.advance(2*24*time.Hour + time.Hour)
	result, err = f.lending.RunExpirySweep(f.ctx)
	require.NoError(t, err)
	require.Len(t, result.ExpiredReservations, 1)
	assert.Equal(t, rEarly.ID, result.ExpiredReservations[0].ID)
	require.Len(t, result.Promoted, 1)
	assert.Equal(t, rLate.ID, result.Promoted[0].ID)

	assert.Equal(t, models.ReservationStatusExpired, f.reservation(rEarly).Status)
	assert.True(t, f.reservation(rLate).Notified)
	assert.Equal(t, int64(1), f.notifications(late, models.NotificationReservationReady))

	// Idempotent
	result, err = f.lending.RunExpirySweep(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, result.ExpiredReservations)
	assert.Empty(t, result.Promoted)
	assert.Equal(t, int64(1), f.notifications(late, models.NotificationReservationReady))

	// An expired reservation cannot be cancelled
	err = f.lending.CancelReservation(f.ctx, rEarly.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestExpirySweep_QueuedReservationWithoutCopy(t *testing.T) {
	f := newFixture(t)
	holder := f.borrower("holder")
	waiter := f.borrower("waiter")
	itemID := f.item(1)

	_, err := f.lending.Borrow(f.ctx, holder, itemID, 0)
	require.NoError(t, err)
	reservation, err := f.lending.Reserve(f.ctx, waiter, itemID)
	require.NoError(t, err)

	f.advance(8 * 24 * time.Hour)
	result, err := f.lending.RunExpirySweep(f.ctx)
	require.NoError(t, err)
	require.Len(t, result.ExpiredReservations, 1)
	assert.Empty(t, result.Promoted)
	assert.Equal(t, models.ReservationStatusExpired, f.reservation(reservation).Status)
	f.requireCopies(itemID, 0, 1, models.ItemStatusBorrowed)
}

func TestListReservations(t *testing.T) {
	f := newFixture(t)
	holder := f.borrower("holder")
	userID := f.borrower("lister")

	for i := 0; i < 2; i++ {
		itemID := f.item(1)
		_, err := f.lending.Borrow(f.ctx, holder, itemID, 0)
		require.NoError(t, err)
		_, err = f.lending.Reserve(f.ctx, userID, itemID)
		require.NoError(t, err)
		f.advance(time.Minute)
	}

	reservations, err := f.lending.ListReservations(f.ctx, userID)
	require.NoError(t, err)
	require.Len(t, reservations, 2)
	assert.True(t, reservations[0].ReservationDate.After(reservations[1].ReservationDate))
	assert.NotNil(t, reservations[0].Item)
}
