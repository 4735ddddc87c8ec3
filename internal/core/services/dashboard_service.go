package services

import (
	"context"
	"time"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/core/domain"

	"gorm.io/gorm"
)

// DashboardService answers the read-only analytics queries
type DashboardService struct {
	db    *gorm.DB
	clock domain.Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store *repositories.Store, clock domain.Clock) *DashboardService {
	return &DashboardService{db: store.DB(), clock: clock}
}

// ============================================================
// Staff Dashboard
// ============================================================

// StaffDashboardData represents library-wide statistics
type StaffDashboardData struct {
	// Inventory
	TotalItems      int64            `json:"total_items"`
	TotalCopies     int64            `json:"total_copies"`
	AvailableCopies int64            `json:"available_copies"`
	ItemsByStatus   map[string]int64 `json:"items_by_status"`
	ItemsByCategory []CategoryStats  `json:"items_by_category"`

	// Borrowers
	TotalBorrowers  int64 `json:"total_borrowers"`
	ActiveBorrowers int64 `json:"active_borrowers"`

	// Loans
	OpenLoans        int64   `json:"open_loans"`
	OverdueLoans     int64   `json:"overdue_loans"`
	LostLoans        int64   `json:"lost_loans"`
	BorrowsThisMonth int64   `json:"borrows_this_month"`
	OutstandingFines float64 `json:"outstanding_fines"`
	CollectedFines   float64 `json:"collected_fines"`

	// Reservations
	ActiveReservations int64 `json:"active_reservations"`
	ReadyReservations  int64 `json:"ready_reservations"`

	// Popular titles
	TopItems []ItemStats `json:"top_items"`
}

// CategoryStats counts items and copies in one category
type CategoryStats struct {
	CategoryID  uint   `json:"category_id"`
	Name        string `json:"name"`
	Items       int64  `json:"items"`
	TotalCopies int64  `json:"total_copies"`
}

// ItemStats counts how often an item has been borrowed
type ItemStats struct {
	ItemID  uint   `json:"item_id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Borrows int64  `json:"borrows"`
}

// GetStaffDashboard returns library-wide statistics
func (s *DashboardService) GetStaffDashboard(ctx context.Context) (*StaffDashboardData, error) {
	data := &StaffDashboardData{ItemsByStatus: map[string]int64{}}
	db := s.db.WithContext(ctx)
	now := s.clock.Now()

	// Inventory
	if err := db.Model(&models.Item{}).Count(&data.TotalItems).Error; err != nil {
		return nil, err
	}
	var copies struct {
		Total     int64
		Available int64
	}
	db.Model(&models.Item{}).
		Select("COALESCE(SUM(total_copies), 0) as total, COALESCE(SUM(available_copies), 0) as available").
		Scan(&copies)
	data.TotalCopies, data.AvailableCopies = copies.Total, copies.Available

	var byStatus []struct {
		Status string
		Count  int64
	}
	db.Model(&models.Item{}).Select("status, COUNT(*) as count").Group("status").Scan(&byStatus)
	for _, row := range byStatus {
		data.ItemsByStatus[row.Status] = row.Count
	}

	db.Model(&models.Item{}).
		Select("categories.id as category_id, categories.name, COUNT(items.id) as items, COALESCE(SUM(items.total_copies), 0) as total_copies").
		Joins("JOIN categories ON categories.id = items.category_id").
		Group("categories.id, categories.name").
		Order("categories.name").
		Scan(&data.ItemsByCategory)

	// Borrowers
	db.Model(&models.BorrowerProfile{}).Count(&data.TotalBorrowers)
	db.Model(&models.BorrowerProfile{}).Where("is_active = ?", true).Count(&data.ActiveBorrowers)

	// Loans (overdue is derived from the due date)
	db.Model(&models.BorrowRecord{}).Where("status = ?", models.RecordStatusBorrowed).Count(&data.OpenLoans)
	db.Model(&models.BorrowRecord{}).
		Where("status = ? AND due_date < ?", models.RecordStatusBorrowed, now).
		Count(&data.OverdueLoans)
	db.Model(&models.BorrowRecord{}).Where("status = ?", models.RecordStatusLost).Count(&data.LostLoans)
	db.Model(&models.BorrowRecord{}).Where("borrow_date >= ?", startOfMonth(now)).Count(&data.BorrowsThisMonth)

	db.Model(&models.BorrowRecord{}).
		Where("fine_amount > 0 AND fine_paid = ?", false).
		Select("COALESCE(SUM(fine_amount), 0)").
		Scan(&data.OutstandingFines)
	db.Model(&models.BorrowRecord{}).
		Where("fine_amount > 0 AND fine_paid = ?", true).
		Select("COALESCE(SUM(fine_amount), 0)").
		Scan(&data.CollectedFines)

	// Reservations
	db.Model(&models.Reservation{}).Where("status = ?", models.ReservationStatusActive).Count(&data.ActiveReservations)
	db.Model(&models.Reservation{}).
		Where("status = ? AND notified = ?", models.ReservationStatusActive, true).
		Count(&data.ReadyReservations)

	// Top items
	db.Model(&models.BorrowRecord{}).
		Select("items.id as item_id, items.title, items.author, COUNT(*) as borrows").
		Joins("JOIN items ON items.id = borrow_records.item_id").
		Group("items.id, items.title, items.author").
		Order("borrows DESC").
		Limit(5).
		Scan(&data.TopItems)

	return data, nil
}

// ============================================================
// Borrower Dashboard
// ============================================================

// BorrowerDashboardData represents one borrower's summary
type BorrowerDashboardData struct {
	MaxBooksAllowed     int                   `json:"max_books_allowed"`
	IsActive            bool                  `json:"is_active"`
	OpenLoans           int64                 `json:"open_loans"`
	OverdueLoans        int64                 `json:"overdue_loans"`
	RemainingBorrows    int64                 `json:"remaining_borrows"`
	OutstandingFines    float64               `json:"outstanding_fines"`
	ReadyReservations   []models.Reservation  `json:"ready_reservations"`
	UnreadNotifications int64                 `json:"unread_notifications"`
	DueSoon             []models.BorrowRecord `json:"due_soon"`
}

// GetBorrowerDashboard returns one borrower's summary
func (s *DashboardService) GetBorrowerDashboard(ctx context.Context, userID uint) (*BorrowerDashboardData, error) {
	db := s.db.WithContext(ctx)
	now := s.clock.Now()

	var profile models.BorrowerProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFound(err, domain.ErrBorrowerNotFound)
	}

	data := &BorrowerDashboardData{
		MaxBooksAllowed:   profile.MaxBooksAllowed,
		IsActive:          profile.IsActive,
		ReadyReservations: []models.Reservation{},
		DueSoon:           []models.BorrowRecord{},
	}

	open := db.Model(&models.BorrowRecord{}).Where("user_id = ? AND status = ?", userID, models.RecordStatusBorrowed)
	open.Count(&data.OpenLoans)
	db.Model(&models.BorrowRecord{}).
		Where("user_id = ? AND status = ? AND due_date < ?", userID, models.RecordStatusBorrowed, now).
		Count(&data.OverdueLoans)

	if remaining := int64(profile.MaxBooksAllowed) - data.OpenLoans; remaining > 0 {
		data.RemainingBorrows = remaining
	}

	db.Model(&models.BorrowRecord{}).
		Where("user_id = ? AND fine_amount > 0 AND fine_paid = ?", userID, false).
		Select("COALESCE(SUM(fine_amount), 0)").
		Scan(&data.OutstandingFines)

	db.Preload("Item").
		Where("user_id = ? AND status = ? AND notified = ?", userID, models.ReservationStatusActive, true).
		Order("notified_at ASC").
		Find(&data.ReadyReservations)

	db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&data.UnreadNotifications)

	// Open loans due within the next week, overdue ones first
	db.Preload("Item").
		Where("user_id = ? AND status = ? AND due_date <= ?", userID, models.RecordStatusBorrowed, now.AddDate(0, 0, 7)).
		Order("due_date ASC").
		Find(&data.DueSoon)

	return data, nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
