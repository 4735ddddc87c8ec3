package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/core/domain"
	"lendinghub/internal/pkg/metrics"
)

// CatalogService manages categories and items. Copy counts are only ever
// changed through the inventory ledger, under the item lock.
type CatalogService struct {
	store        *repositories.Store
	ledger       *InventoryLedger
	reservations *ReservationManager
}

// NewCatalogService creates a new catalog service sharing the lending core's ledger and queue
func NewCatalogService(store *repositories.Store, lending *LendingService) *CatalogService {
	return &CatalogService{
		store:        store,
		ledger:       lending.ledger,
		reservations: lending.reservations,
	}
}

// CategoryInput represents create/update category input
type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CreateItemInput represents create item input
type CreateItemInput struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	ISBN        string `json:"isbn" validate:"required"`
	CategoryID  uint   `json:"category_id" validate:"required"`
	Publisher   string `json:"publisher"`
	Description string `json:"description"`
	TotalCopies int    `json:"total_copies"`
}

// UpdateItemInput represents the descriptive fields of an item
type UpdateItemInput struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	CategoryID  *uint   `json:"category_id"`
	Publisher   *string `json:"publisher"`
	Description *string `json:"description"`
}

// ============================================================
// Categories
// ============================================================

// CreateCategory creates a category with a unique name
func (s *CatalogService) CreateCategory(ctx context.Context, input *CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrInvalidInput)
	}

	category := &models.Category{Name: name, Description: strings.TrimSpace(input.Description)}
	if err := s.store.Categories.Create(ctx, category); err != nil {
		return nil, duplicate(err)
	}

	log.Printf("✅ Category created: %s", category.Name)
	return category, nil
}

// UpdateCategory edits a category
func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, input *CategoryInput) (*models.Category, error) {
	category, err := s.store.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrCategoryNotFound)
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	category.Description = strings.TrimSpace(input.Description)
	if err := s.store.Categories.Update(ctx, category); err != nil {
		return nil, duplicate(err)
	}
	return category, nil
}

// ListCategories lists all categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.store.Categories.List(ctx)
}

// ============================================================
// Items
// ============================================================

// CreateItem adds a title to the catalog with all its copies on the shelf
func (s *CatalogService) CreateItem(ctx context.Context, createdBy uint, input *CreateItemInput) (*models.Item, error) {
	// 1. Validate
	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)
	isbn := normalizeISBN(input.ISBN)
	switch {
	case title == "" || author == "":
		return nil, fmt.Errorf("%w: title and author are required", domain.ErrInvalidInput)
	case len(isbn) != 10 && len(isbn) != 13:
		return nil, fmt.Errorf("%w: isbn must have 10 or 13 characters", domain.ErrInvalidInput)
	case input.TotalCopies < 0:
		return nil, fmt.Errorf("%w: total_copies must not be negative", domain.ErrInvalidInput)
	}

	// 2. Category must exist
	if _, err := s.store.Categories.GetByID(ctx, input.CategoryID); err != nil {
		return nil, notFound(err, domain.ErrCategoryNotFound)
	}

	// 3. Status is derived from the initial copy count
	item := &models.Item{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		CategoryID:      input.CategoryID,
		Publisher:       strings.TrimSpace(input.Publisher),
		Description:     strings.TrimSpace(input.Description),
		TotalCopies:     input.TotalCopies,
		AvailableCopies: input.TotalCopies,
		Status:          deriveStatus(input.TotalCopies, ""),
		CreatedBy:       optionalID(createdBy),
	}
	if err := s.store.Items.Create(ctx, item); err != nil {
		return nil, duplicate(err)
	}

	log.Printf("✅ Item created: %s [%s] x%d", item.Title, item.ISBN, item.TotalCopies)
	return item, nil
}

// GetItem returns an item with its category
func (s *CatalogService) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	item, err := s.store.Items.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrItemNotFound)
	}
	return item, nil
}

// ListItems lists items, optionally by category
func (s *CatalogService) ListItems(ctx context.Context, categoryID uint, offset, limit int) ([]*models.Item, int64, error) {
	return s.store.Items.List(ctx, categoryID, offset, limit)
}

// UpdateItem edits descriptive fields only
func (s *CatalogService) UpdateItem(ctx context.Context, id uint, input *UpdateItemInput) (*models.Item, error) {
	item, err := s.store.Items.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrItemNotFound)
	}

	if input.Title != nil {
		item.Title = strings.TrimSpace(*input.Title)
	}
	if input.Author != nil {
		item.Author = strings.TrimSpace(*input.Author)
	}
	if input.Publisher != nil {
		item.Publisher = strings.TrimSpace(*input.Publisher)
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.CategoryID != nil && *input.CategoryID != item.CategoryID {
		if _, err := s.store.Categories.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, notFound(err, domain.ErrCategoryNotFound)
		}
		item.CategoryID = *input.CategoryID
		item.Category = nil
	}
	if item.Title == "" || item.Author == "" {
		return nil, fmt.Errorf("%w: title and author are required", domain.ErrInvalidInput)
	}

	if err := s.store.Items.UpdateDetails(ctx, item); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

// ============================================================
// Inventory administration (ledger, item-locked)
// ============================================================

// SetMaintenance takes an item out of circulation or puts it back.
// Copies coming back from maintenance are offered to the reservation queue.
func (s *CatalogService) SetMaintenance(ctx context.Context, itemID uint, on bool) (*models.Item, error) {
	return s.withLedger(ctx, "set_maintenance", itemID, func(tx *repositories.Store, item *models.Item) error {
		if err := s.ledger.SetMaintenance(ctx, tx, item, on); err != nil {
			return err
		}
		if on {
			return nil
		}
		_, err := s.reservations.PromoteNext(ctx, tx, item)
		return err
	})
}

// AddCopies adds n new copies to the shelf and offers them to the reservation queue
func (s *CatalogService) AddCopies(ctx context.Context, itemID uint, n int) (*models.Item, error) {
	return s.withLedger(ctx, "add_copies", itemID, func(tx *repositories.Store, item *models.Item) error {
		if err := s.ledger.AddCopies(ctx, tx, item, n); err != nil {
			return err
		}
		_, err := s.reservations.PromoteNext(ctx, tx, item)
		return err
	})
}

// WriteOffCopy removes one lost copy from the inventory
func (s *CatalogService) WriteOffCopy(ctx context.Context, itemID uint) (*models.Item, error) {
	return s.withLedger(ctx, "write_off", itemID, func(tx *repositories.Store, item *models.Item) error {
		return s.ledger.WriteOffCopy(ctx, tx, item)
	})
}

func (s *CatalogService) withLedger(ctx context.Context, op string, itemID uint, fn func(tx *repositories.Store, item *models.Item) error) (item *models.Item, err error) {
	defer func(start time.Time) { metrics.Observe(op, start, err) }(time.Now())

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		locked, err := tx.Items.LockByID(ctx, itemID)
		if err != nil {
			return notFound(err, domain.ErrItemNotFound)
		}
		if err := fn(tx, locked); err != nil {
			return err
		}
		item = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Inventory %s: item %d (available=%d total=%d status=%s)", op, item.ID, item.AvailableCopies, item.TotalCopies, item.Status)
	return item, nil
}

func normalizeISBN(isbn string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(isbn)))
}
