package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the lending repositories over one database handle.
// Inside Transaction every repository is bound to the same tx.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Profiles      *ProfileRepository
	Categories    *CategoryRepository
	Items         *ItemRepository
	Records       *BorrowRecordRepository
	Reservations  *ReservationRepository
	Notifications *NotificationRepository
}

// NewStore builds every repository on db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Profiles:      NewProfileRepository(db),
		Categories:    NewCategoryRepository(db),
		Items:         NewItemRepository(db),
		Records:       NewBorrowRecordRepository(db),
		Reservations:  NewReservationRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// DB returns the underlying handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn in one database transaction. fn must use tx, never s.
// Returning an error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(NewStore(db))
	})
}
