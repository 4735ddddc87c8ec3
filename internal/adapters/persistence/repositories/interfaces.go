package repositories

import (
	"context"

	"lendinghub/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// CopyState is the ledger-owned part of an item row
type CopyState struct {
	Available int
	Total     int
	Status    string
}

// StateOf extracts the ledger-owned columns from an item
func StateOf(item *models.Item) CopyState {
	return CopyState{
		Available: item.AvailableCopies,
		Total:     item.TotalCopies,
		Status:    item.Status,
	}
}
