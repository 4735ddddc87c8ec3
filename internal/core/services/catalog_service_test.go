package services

import (
	"testing"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItem(t *testing.T) {
	f := newFixture(t)

	t.Run("normalizes isbn", func(t *testing.T) {
		item, err := f.catalog.CreateItem(f.ctx, 0, &CreateItemInput{
			Title:       " Refactoring ",
			Author:      "Martin Fowler",
			ISBN:        "978-0-13-475759-9",
			CategoryID:  f.category,
			TotalCopies: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, "9780134757599", item.ISBN)
		assert.Equal(t, "Refactoring", item.Title)
		f.requireCopies(item.ID, 2, 2, models.ItemStatusAvailable)
	})

	t.Run("no copies", func(t *testing.T) {
		item, err := f.catalog.CreateItem(f.ctx, 0, &CreateItemInput{
			Title:      "Empty Shelf",
			Author:     "Nobody",
			ISBN:       "0-306-40615-2",
			CategoryID: f.category,
		})
		require.NoError(t, err)
		f.requireCopies(item.ID, 0, 0, models.ItemStatusBorrowed)
	})

	invalid := []struct {
		name  string
		input CreateItemInput
		want  error
	}{
		{"short isbn", CreateItemInput{Title: "T", Author: "A", ISBN: "12345", CategoryID: f.category}, domain.ErrInvalidInput},
		{"missing title", CreateItemInput{Author: "A", ISBN: "9780000000017", CategoryID: f.category}, domain.ErrInvalidInput},
		{"negative copies", CreateItemInput{Title: "T", Author: "A", ISBN: "9780000000024", CategoryID: f.category, TotalCopies: -1}, domain.ErrInvalidInput},
		{"unknown category", CreateItemInput{Title: "T", Author: "A", ISBN: "9780000000031", CategoryID: 999}, domain.ErrCategoryNotFound},
		{"duplicate isbn", CreateItemInput{Title: "T", Author: "A", ISBN: "9780134757599", CategoryID: f.category}, domain.ErrDuplicateEntry},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			input := tc.input
			_, err := f.catalog.CreateItem(f.ctx, 0, &input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCategories(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.CreateCategory(f.ctx, &CategoryInput{Name: "General"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)

	_, err = f.catalog.CreateCategory(f.ctx, &CategoryInput{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	science, err := f.catalog.CreateCategory(f.ctx, &CategoryInput{Name: "Science", Description: "Physics and such"})
	require.NoError(t, err)

	updated, err := f.catalog.UpdateCategory(f.ctx, science.ID, &CategoryInput{Name: "Natural Science"})
	require.NoError(t, err)
	assert.Equal(t, "Natural Science", updated.Name)
	assert.Empty(t, updated.Description)

	_, err = f.catalog.UpdateCategory(f.ctx, 999, &CategoryInput{Name: "Ghost"})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	categories, err := f.catalog.ListCategories(f.ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestUpdateItem_DescriptiveFieldsOnly(t *testing.T) {
	f := newFixture(t)
	itemID := f.item(3)
	other, err := f.catalog.CreateCategory(f.ctx, &CategoryInput{Name: "Other"})
	require.NoError(t, err)

	title := "New Title"
	item, err := f.catalog.UpdateItem(f.ctx, itemID, &UpdateItemInput{Title: &title, CategoryID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, "New Title", item.Title)
	assert.Equal(t, other.ID, item.CategoryID)
	require.NotNil(t, item.Category)
	assert.Equal(t, "Other", item.Category.Name)
	f.requireCopies(itemID, 3, 3, models.ItemStatusAvailable)

	blank := ""
	_, err = f.catalog.UpdateItem(f.ctx, itemID, &UpdateItemInput{Author: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	missing := uint(999)
	_, err = f.catalog.UpdateItem(f.ctx, itemID, &UpdateItemInput{CategoryID: &missing})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	_, err = f.catalog.GetItem(f.ctx, 999)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestListItems(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.item(1)
	}
	other, err := f.catalog.CreateCategory(f.ctx, &CategoryInput{Name: "Other"})
	require.NoError(t, err)
	_, err = f.catalog.CreateItem(f.ctx, 0, &CreateItemInput{
		Title: "Elsewhere", Author: "A", ISBN: "9781111111111", CategoryID: other.ID, TotalCopies: 1,
	})
	require.NoError(t, err)

	items, total, err := f.catalog.ListItems(f.ctx, 0, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, items, 2)

	items, total, err = f.catalog.ListItems(f.ctx, other.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Elsewhere", items[0].Title)
}

func TestMaintenance_BlocksBorrowAndReleasesQueue(t *testing.T) {
	f := newFixture(t)
	holder := f.borrower("holder")
	waiter := f.borrower("waiter")
	itemID := f.item(1)

	_, err := f.catalog.SetMaintenance(f.ctx, itemID, true)
	require.NoError(t, err)
	f.requireCopies(itemID, 1, 1, models.ItemStatusMaintenance)

	_, err = f.lending.Borrow(f.ctx, holder, itemID, 0)
	assert.ErrorIs(t, err, domain.ErrItemUnavailable)

	// An item in maintenance can be reserved
	reservation, err := f.lending.Reserve(f.ctx, waiter, itemID)
	require.NoError(t, err)
	assert.False(t, reservation.Notified)

	_, err = f.catalog.SetMaintenance(f.ctx, itemID, false)
	require.NoError(t, err)
	f.requireCopies(itemID, 1, 1, models.ItemStatusAvailable)
	assert.True(t, f.reservation(reservation).Notified)
}

func TestAddCopies_PromotesQueue(t *testing.T) {
	f := newFixture(t)
	holder := f.borrower("holder")
	first := f.borrower("first")
	second := f.borrower("second")
	itemID := f.item(1)

	_, err := f.lending.Borrow(f.ctx, holder, itemID, 0)
	require.NoError(t, err)
	r1, err := f.lending.Reserve(f.ctx, first, itemID)
	require.NoError(t, err)
	r2, err := f.lending.Reserve(f.ctx, second, itemID)
	require.NoError(t, err)

	item, err := f.catalog.AddCopies(f.ctx, itemID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.AvailableCopies)
	assert.Equal(t, 3, item.TotalCopies)
	assert.True(t, f.reservation(r1).Notified)
	assert.True(t, f.reservation(r2).Notified)

	_, err = f.catalog.AddCopies(f.ctx, itemID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.catalog.AddCopies(f.ctx, 999, 1)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestWriteOffCopy_AfterLoss(t *testing.T) {
	f := newFixture(t)
	userID := f.borrower("careless")
	itemID := f.item(2)

	record, err := f.lending.Borrow(f.ctx, userID, itemID, 0)
	require.NoError(t, err)
	_, err = f.lending.MarkLost(f.ctx, record.ID)
	require.NoError(t, err)
	f.requireCopies(itemID, 1, 2, models.ItemStatusAvailable)

	_, err = f.catalog.WriteOffCopy(f.ctx, itemID)
	require.NoError(t, err)
	f.requireCopies(itemID, 1, 1, models.ItemStatusAvailable)

	// The last copy on the shelf is not lost
	_, err = f.catalog.WriteOffCopy(f.ctx, itemID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	f.requireCopies(itemID, 1, 1, models.ItemStatusAvailable)
}
