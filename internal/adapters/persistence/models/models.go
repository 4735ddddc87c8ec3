package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================
// Users & Borrower Profiles
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	FullName  string         `gorm:"size:150" json:"full_name"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'USER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BorrowerProfile holds the per-user lending settings (one per user)
type BorrowerProfile struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	MaxBooksAllowed int       `gorm:"not null" json:"max_books_allowed"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	Phone           string    `gorm:"size:20" json:"phone"`
	Address         string    `gorm:"type:text" json:"address"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	User            User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (BorrowerProfile) TableName() string {
	return "borrower_profiles"
}

// ============================================================
// Catalog & Inventory
// ============================================================

// Category classifies items
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// Item Status
const (
	ItemStatusAvailable   = "available"
	ItemStatusBorrowed    = "borrowed"
	ItemStatusReserved    = "reserved"
	ItemStatusMaintenance = "maintenance"
)

// Item is a lendable title with a finite number of copies.
// Status and AvailableCopies are written only by the inventory ledger.
type Item struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"size:255;not null;index" json:"title"`
	Author          string    `gorm:"size:255;not null;index" json:"author"`
	ISBN            string    `gorm:"column:isbn;size:13;uniqueIndex;not null" json:"isbn"`
	CategoryID      uint      `gorm:"not null;index" json:"category_id"`
	Publisher       string    `gorm:"size:255" json:"publisher"`
	Description     string    `gorm:"type:text" json:"description"`
	Status          string    `gorm:"size:20;default:'available';index" json:"status"`
	TotalCopies     int       `gorm:"not null;default:0" json:"total_copies"`
	AvailableCopies int       `gorm:"not null;default:0" json:"available_copies"`
	CreatedBy       *uint     `json:"created_by"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Category        *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Item) TableName() string {
	return "items"
}

// ============================================================
// Borrow Records
// ============================================================

// Borrow Record Status
const (
	RecordStatusBorrowed = "borrowed"
	RecordStatusReturned = "returned"
	RecordStatusOverdue  = "overdue"
	RecordStatusLost     = "lost"
)

// BorrowRecord is the audit trail of one loan. Records are never deleted.
type BorrowRecord struct {
	ID              uuid.UUID  `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index:idx_record_user_status" json:"user_id"`
	ItemID          uint       `gorm:"not null;index:idx_record_item_status" json:"item_id"`
	BorrowDate      time.Time  `gorm:"not null" json:"borrow_date"`
	DueDate         time.Time  `gorm:"not null;index" json:"due_date"`
	ReturnDate      *time.Time `json:"return_date"`
	Status          string     `gorm:"size:20;default:'borrowed';index:idx_record_user_status;index:idx_record_item_status" json:"status"`
	RenewalCount    int        `gorm:"not null;default:0" json:"renewal_count"`
	MaxRenewals     int        `gorm:"not null;default:0" json:"max_renewals"`
	IssuedBy        *uint      `json:"issued_by"`
	ReturnedTo      *uint      `json:"returned_to"`
	IssueNotes      string     `gorm:"type:text" json:"issue_notes"`
	ReturnNotes     string     `gorm:"type:text" json:"return_notes"`
	FineAmount      float64    `gorm:"type:decimal(10,2);not null;default:0" json:"fine_amount"`
	FinePaid        bool       `gorm:"default:false" json:"fine_paid"`
	DueReminderFor  *time.Time `json:"-"`
	OverdueNotified bool       `gorm:"default:false" json:"-"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Item            *Item      `gorm:"foreignKey:ItemID" json:"item,omitempty"`

	// Shown is DisplayStatus at read time; not persisted
	Shown string `gorm:"-" json:"display_status,omitempty"`
}

func (BorrowRecord) TableName() string {
	return "borrow_records"
}

// IsOpen reports whether the copy is still out on this record
func (r *BorrowRecord) IsOpen() bool {
	return r.Status == RecordStatusBorrowed
}

// IsOverdue is derived from the due date, never stored.
// A lost record past due still counts as overdue.
func (r *BorrowRecord) IsOverdue(now time.Time) bool {
	if r.Status == RecordStatusReturned {
		return false
	}
	return now.After(r.DueDate)
}

// DisplayStatus reports overdue for open records past due
func (r *BorrowRecord) DisplayStatus(now time.Time) string {
	if r.IsOpen() && r.IsOverdue(now) {
		return RecordStatusOverdue
	}
	return r.Status
}

// ============================================================
// Reservations
// ============================================================

// Reservation Status
const (
	ReservationStatusActive    = "active"
	ReservationStatusFulfilled = "fulfilled"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusExpired   = "expired"
)

// Reservation queues a borrower for an unavailable item.
// Notified marks an active reservation that currently holds a freed copy.
type Reservation struct {
	ID              uuid.UUID  `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index:idx_reservation_user_item" json:"user_id"`
	ItemID          uint       `gorm:"not null;index:idx_reservation_user_item;index:idx_reservation_queue" json:"item_id"`
	ReservationDate time.Time  `gorm:"not null;index:idx_reservation_queue" json:"reservation_date"`
	ExpiryDate      time.Time  `gorm:"not null;index" json:"expiry_date"`
	Status          string     `gorm:"size:20;default:'active';index" json:"status"`
	Notified        bool       `gorm:"default:false" json:"notified"`
	NotifiedAt      *time.Time `json:"notified_at"`
	ClosedAt        *time.Time `json:"closed_at"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Item            *Item      `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// IsExpired reports whether the reservation window has passed
func (r *Reservation) IsExpired(now time.Time) bool {
	return now.After(r.ExpiryDate)
}

// ============================================================
// Notifications
// ============================================================

// Notification Type
const (
	NotificationDueReminder        = "due_reminder"
	NotificationOverdue            = "overdue"
	NotificationReservationReady   = "reservation_ready"
	NotificationReturnConfirmation = "return_confirmation"
	NotificationFineNotice         = "fine_notice"
	NotificationGeneral            = "general"
)

// Notification is an emitted event for a user. Only IsRead ever changes.
type Notification struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Message        string     `gorm:"type:text;not null" json:"message"`
	Type           string     `gorm:"column:notification_type;size:20;default:'general'" json:"type"`
	IsRead         bool       `gorm:"default:false" json:"is_read"`
	BorrowRecordID *uuid.UUID `gorm:"type:varchar(36);index" json:"borrow_record_id,omitempty"`
	ItemID         *uint      `gorm:"index" json:"item_id,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all lending tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&BorrowerProfile{},
		&Category{},
		&Item{},
		&BorrowRecord{},
		&Reservation{},
		&Notification{},
	)
}
