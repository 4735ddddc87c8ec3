package repositories

import (
	"context"

	"lendinghub/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository handles category data access
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// GetByID gets a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetByName gets a category by its unique name
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Update updates name and description
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// List lists all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

// ItemRepository handles item data access
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create creates a new item
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID gets an item by ID with its category
func (r *ItemRepository) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Preload("Category").First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByISBN gets an item by its external identifier
func (r *ItemRepository) GetByISBN(ctx context.Context, isbn string) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// LockByID reads an item and takes the row-level exclusive lock for the rest of the transaction.
// Every mutation of an item and its open records/reservations starts here.
func (r *ItemRepository) LockByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SwapCopies writes next only if the row still holds prev.
// Returns false when another writer changed the row first.
func (r *ItemRepository) SwapCopies(ctx context.Context, id uint, prev, next CopyState) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND available_copies = ? AND total_copies = ? AND status = ?",
			id, prev.Available, prev.Total, prev.Status).
		Updates(map[string]interface{}{
			"available_copies": next.Available,
			"total_copies":     next.Total,
			"status":           next.Status,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateDetails updates descriptive columns only; copy counts and status are ledger-owned
func (r *ItemRepository) UpdateDetails(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"title":       item.Title,
			"author":      item.Author,
			"category_id": item.CategoryID,
			"publisher":   item.Publisher,
			"description": item.Description,
		}).Error
}

// List lists items, optionally filtered by category, ordered by title
func (r *ItemRepository) List(ctx context.Context, categoryID uint, offset, limit int) ([]*models.Item, int64, error) {
	var items []*models.Item
	var total int64

	byCategory := func(db *gorm.DB) *gorm.DB {
		if categoryID != 0 {
			return db.Where("category_id = ?", categoryID)
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&models.Item{}).Scopes(byCategory).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Scopes(byCategory).
		Preload("Category").
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return items, total, err
}
