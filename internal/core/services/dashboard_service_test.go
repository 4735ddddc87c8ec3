package services

import (
	"testing"
	"time"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	dashboard := NewDashboardService(f.store, f.lending.Clock())

	alice := f.borrower("alice")
	bob := f.borrower("bob")
	popular := f.item(1)
	quiet := f.item(3)

	// alice borrows both
	late, err := f.lending.Borrow(f.ctx, alice, popular, 0)
	require.NoError(t, err)
	_, err = f.lending.Borrow(f.ctx, alice, quiet, 0)
	require.NoError(t, err)

	f.advance(10 * 24 * time.Hour)
	_, err = f.lending.Renew(f.ctx, late.ID)
	require.NoError(t, err)

	// bob queues for the popular one; the hold window is still open when alice returns it
	f.advance(8 * 24 * time.Hour)
	_, err = f.lending.Reserve(f.ctx, bob, popular)
	require.NoError(t, err)

	t.Run("staff", func(t *testing.T) {
		data, err := dashboard.GetStaffDashboard(f.ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(2), data.TotalItems)
		assert.Equal(t, int64(4), data.TotalCopies)
		assert.Equal(t, int64(2), data.AvailableCopies)
		assert.Equal(t, int64(1), data.ItemsByStatus[models.ItemStatusAvailable])
		assert.Equal(t, int64(1), data.ItemsByStatus[models.ItemStatusBorrowed])
		require.Len(t, data.ItemsByCategory, 1)
		assert.Equal(t, "General", data.ItemsByCategory[0].Name)
		assert.Equal(t, int64(2), data.ItemsByCategory[0].Items)

		assert.Equal(t, int64(2), data.TotalBorrowers)
		assert.Equal(t, int64(2), data.ActiveBorrowers)
		assert.Equal(t, int64(2), data.OpenLoans)
		assert.Equal(t, int64(1), data.OverdueLoans)
		assert.Equal(t, int64(1), data.ActiveReservations)
		assert.Zero(t, data.ReadyReservations)
		assert.Len(t, data.TopItems, 2)
	})

	t.Run("borrower", func(t *testing.T) {
		data, err := dashboard.GetBorrowerDashboard(f.ctx, alice)
		require.NoError(t, err)

		assert.Equal(t, int64(2), data.OpenLoans)
		assert.Equal(t, int64(1), data.OverdueLoans)
		assert.Equal(t, int64(f.policy.MaxBooksAllowed-2), data.RemainingBorrows)
		assert.True(t, data.IsActive)
		// The renewed loan is not due this week
		require.Len(t, data.DueSoon, 1)
		assert.Equal(t, quiet, data.DueSoon[0].ItemID)
		assert.Empty(t, data.ReadyReservations)
	})

	t.Run("ready hold and fines", func(t *testing.T) {
		records, _, err := f.lending.ListLoans(f.ctx, alice, 0, 10)
		require.NoError(t, err)
		for _, r := range records {
			_, err := f.lending.ReturnItem(f.ctx, r.ID, 0, "")
			require.NoError(t, err)
		}

		staff, err := dashboard.GetStaffDashboard(f.ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), staff.ReadyReservations)
		assert.InDelta(t, 4.00, staff.OutstandingFines, 0.001)
		assert.Zero(t, staff.CollectedFines)

		data, err := dashboard.GetBorrowerDashboard(f.ctx, bob)
		require.NoError(t, err)
		require.Len(t, data.ReadyReservations, 1)
		assert.Equal(t, popular, data.ReadyReservations[0].ItemID)
		assert.Equal(t, int64(1), data.UnreadNotifications)
	})

	t.Run("unknown borrower", func(t *testing.T) {
		_, err := dashboard.GetBorrowerDashboard(f.ctx, 999)
		assert.ErrorIs(t, err, domain.ErrBorrowerNotFound)
	})
}
