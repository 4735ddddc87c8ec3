package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/config"
	"lendinghub/internal/core/domain"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// fixture is a lending core over a throwaway SQLite file with a hand-driven clock
type fixture struct {
	t         *testing.T
	ctx       context.Context
	now       time.Time
	policy    domain.Policy
	store     *repositories.Store
	lending   *LendingService
	catalog   *CatalogService
	borrowers *BorrowerService
	category  uint
	seq       int
}

func newFixture(t *testing.T, tweaks ...func(*domain.Policy)) *fixture {
	t.Helper()

	db, err := config.OpenDatabase(config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "lending.db"),
	}, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	policy := domain.DefaultPolicy()
	for _, tweak := range tweaks {
		tweak(&policy)
	}

	f := &fixture{t: t, ctx: context.Background(), now: epoch, policy: policy}
	f.store = repositories.NewStore(db)
	f.lending = NewLendingService(f.store, policy, domain.ClockFunc(func() time.Time { return f.now }))
	f.catalog = NewCatalogService(f.store, f.lending)
	f.borrowers = NewBorrowerService(f.store, policy).WithHashCost(bcrypt.MinCost)

	category, err := f.catalog.CreateCategory(f.ctx, &CategoryInput{Name: "General"})
	require.NoError(t, err)
	f.category = category.ID
	return f
}

// advance moves the clock forward
func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// borrower creates an active USER with the policy's borrowing limit
func (f *fixture) borrower(name string) uint {
	f.t.Helper()
	profile, err := f.borrowers.CreateUser(f.ctx, &CreateUserInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	require.NoError(f.t, err)
	return profile.UserID
}

// item creates an item with the given number of copies
func (f *fixture) item(copies int) uint {
	f.t.Helper()
	f.seq++
	item, err := f.catalog.CreateItem(f.ctx, 0, &CreateItemInput{
		Title:       fmt.Sprintf("Title %d", f.seq),
		Author:      "Author",
		ISBN:        fmt.Sprintf("978%010d", f.seq),
		CategoryID:  f.category,
		TotalCopies: copies,
	})
	require.NoError(f.t, err)
	return item.ID
}

// reload reads an item straight from the database
func (f *fixture) reload(itemID uint) *models.Item {
	f.t.Helper()
	item, err := f.store.Items.GetByID(f.ctx, itemID)
	require.NoError(f.t, err)
	return item
}

// reservation reads a reservation straight from the database
func (f *fixture) reservation(r *models.Reservation) *models.Reservation {
	f.t.Helper()
	got, err := f.store.Reservations.GetByID(f.ctx, r.ID)
	require.NoError(f.t, err)
	return got
}

// notifications returns the count of one notification type for a user
func (f *fixture) notifications(userID uint, notificationType string) int64 {
	f.t.Helper()
	n, err := f.store.Notifications.CountByType(f.ctx, userID, notificationType)
	require.NoError(f.t, err)
	return n
}

// requireCopies checks the ledger columns of an item
func (f *fixture) requireCopies(itemID uint, available, total int, status string) {
	f.t.Helper()
	item := f.reload(itemID)
	require.Equal(f.t, available, item.AvailableCopies, "available copies")
	require.Equal(f.t, total, item.TotalCopies, "total copies")
	require.Equal(f.t, status, item.Status, "status")
}
