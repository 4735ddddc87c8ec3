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

// BorrowRecordRepository handles borrow record data access
type BorrowRecordRepository struct {
	db *gorm.DB
}

// NewBorrowRecordRepository creates a new borrow record repository
func NewBorrowRecordRepository(db *gorm.DB) *BorrowRecordRepository {
	return &BorrowRecordRepository{db: db}
}

// Create creates a new borrow record
func (r *BorrowRecordRepository) Create(ctx context.Context, record *models.BorrowRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID gets a record by ID with its item
func (r *BorrowRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BorrowRecord, error) {
	var record models.BorrowRecord
	err := r.db.WithContext(ctx).Preload("Item").Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// LockByID reads the record with a row lock held until the transaction ends.
// Callers take the item lock first.
func (r *BorrowRecordRepository) LockByID(ctx context.Context, id uuid.UUID) (*models.BorrowRecord, error) {
	var record models.BorrowRecord
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Item").
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindOpen returns the open record of a borrower on an item, or nil when there is none
func (r *BorrowRecordRepository) FindOpen(ctx context.Context, userID, itemID uint) (*models.BorrowRecord, error) {
	var record models.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ? AND status = ?", userID, itemID, models.RecordStatusBorrowed).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CountOpenByUser counts records with status borrowed for a borrower
func (r *BorrowRecordRepository) CountOpenByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("user_id = ? AND status = ?", userID, models.RecordStatusBorrowed).
		Count(&count).Error
	return count, err
}

// Save writes every column of the record
func (r *BorrowRecordRepository) Save(ctx context.Context, record *models.BorrowRecord) error {
	return r.db.WithContext(ctx).Omit("Item").Save(record).Error
}

// ListOpenDueBy returns open records due at or before the given instant, oldest due first
func (r *BorrowRecordRepository) ListOpenDueBy(ctx context.Context, by time.Time) ([]models.BorrowRecord, error) {
	var records []models.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date <= ?", models.RecordStatusBorrowed, by).
		Order("due_date ASC").
		Find(&records).Error
	return records, err
}

// ListByUser lists a borrower's records, newest first
func (r *BorrowRecordRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]models.BorrowRecord, int64, error) {
	var records []models.BorrowRecord
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.BorrowRecord{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ?", userID).
		Order("borrow_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	return records, total, err
}
