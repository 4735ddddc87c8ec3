package repositories

import (
	"context"

	"lendinghub/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository handles borrower profile data access
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new borrower profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create creates a new borrower profile
func (r *ProfileRepository) Create(ctx context.Context, profile *models.BorrowerProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetByUserID gets the profile of a user with the user preloaded
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uint) (*models.BorrowerProfile, error) {
	var profile models.BorrowerProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// LockByUserID reads a profile under a row lock, serializing one borrower's borrows across items
func (r *ProfileRepository) LockByUserID(ctx context.Context, userID uint) (*models.BorrowerProfile, error) {
	var profile models.BorrowerProfile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateSettings updates the lending settings of a profile
func (r *ProfileRepository) UpdateSettings(ctx context.Context, userID uint, maxBooks int, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.BorrowerProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"max_books_allowed": maxBooks,
			"is_active":         active,
		}).Error
}
