package repositories

import (
	"context"
	"errors"
	"time"

	"lendinghub/internal/adapters/persistence/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservationRepository handles reservation queue data access
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// ============================================================
// Reservation CRUD
// ============================================================

// Create creates a new reservation
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// GetByID returns a reservation by ID with its item
func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).Preload("Item").Where("id = ?", id).First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// LockByID reads the reservation with a row lock held until the transaction ends.
// Callers take the item lock first.
func (r *ReservationRepository) LockByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Item").
		Where("id = ?", id).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Save writes every column of the reservation
func (r *ReservationRepository) Save(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Omit("Item").Save(reservation).Error
}

// ListByUser returns a user's reservations, newest first
func (r *ReservationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ?", userID).
		Order("reservation_date DESC").
		Find(&reservations).Error
	return reservations, err
}

// ============================================================
// Queue Queries
// ============================================================

// FindActive returns the active reservation of a user on an item, or nil
func (r *ReservationRepository) FindActive(ctx context.Context, userID, itemID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ? AND status = ?", userID, itemID, models.ReservationStatusActive).
		First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// NextInQueue finds the oldest active reservation on an item that does not hold a copy yet
// and has not expired at now. Strict FIFO by reservation_date.
func (r *ReservationRepository) NextInQueue(ctx context.Context, itemID uint, now time.Time) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND status = ? AND notified = ? AND expiry_date >= ?",
			itemID, models.ReservationStatusActive, false, now).
		Order("reservation_date ASC").
		First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CountHolds counts active reservations on an item that hold a freed copy,
// excluding the given user (0 excludes nobody)
func (r *ReservationRepository) CountHolds(ctx context.Context, itemID, excludeUserID uint) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("item_id = ? AND status = ? AND notified = ?", itemID, models.ReservationStatusActive, true)
	if excludeUserID != 0 {
		query = query.Where("user_id <> ?", excludeUserID)
	}
	err := query.Count(&count).Error
	return count, err
}

// ListExpiredActive returns active reservations whose expiry_date is before now
func (r *ReservationRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date < ?", models.ReservationStatusActive, now).
		Order("expiry_date ASC").
		Find(&reservations).Error
	return reservations, err
}
