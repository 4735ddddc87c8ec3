package services

import (
	"context"
	"fmt"
	"log"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/core/domain"
)

// InventoryLedger is the only writer of an item's available_copies and status.
// Every method expects the item to be locked in tx (ItemRepository.LockByID).
type InventoryLedger struct{}

// NewInventoryLedger creates a new inventory ledger
func NewInventoryLedger() *InventoryLedger {
	return &InventoryLedger{}
}

// IsAvailable reports whether a copy of the item can be lent right now
func (l *InventoryLedger) IsAvailable(item *models.Item) bool {
	return item.Status == models.ItemStatusAvailable && item.AvailableCopies > 0
}

// DecrementCopy takes one copy off the shelf
func (l *InventoryLedger) DecrementCopy(ctx context.Context, tx *repositories.Store, item *models.Item) error {
	prev := repositories.StateOf(item)
	if prev.Available <= 0 {
		return l.violation(item, "decrement", domain.ErrInsufficientCopies)
	}

	next := prev
	next.Available--
	next.Status = deriveStatus(next.Available, prev.Status)
	return l.swap(ctx, tx, item, prev, next, "decrement")
}

// IncrementCopy puts one copy back on the shelf
func (l *InventoryLedger) IncrementCopy(ctx context.Context, tx *repositories.Store, item *models.Item) error {
	prev := repositories.StateOf(item)
	if prev.Available+1 > prev.Total {
		return l.violation(item, "increment", domain.ErrCopyCountOverflow)
	}

	next := prev
	next.Available++
	next.Status = deriveStatus(next.Available, prev.Status)
	return l.swap(ctx, tx, item, prev, next, "increment")
}

// SetMaintenance pulls the item from circulation or puts it back.
// Leaving maintenance re-derives status from available_copies.
func (l *InventoryLedger) SetMaintenance(ctx context.Context, tx *repositories.Store, item *models.Item, on bool) error {
	prev := repositories.StateOf(item)
	next := prev
	if on {
		next.Status = models.ItemStatusMaintenance
	} else {
		next.Status = deriveStatus(prev.Available, "")
	}
	if next == prev {
		return nil
	}
	return l.swap(ctx, tx, item, prev, next, "maintenance")
}

// AddCopies grows both counters by n
func (l *InventoryLedger) AddCopies(ctx context.Context, tx *repositories.Store, item *models.Item, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: copies to add must be positive", domain.ErrInvalidInput)
	}

	prev := repositories.StateOf(item)
	next := prev
	next.Total += n
	next.Available += n
	next.Status = deriveStatus(next.Available, prev.Status)
	return l.swap(ctx, tx, item, prev, next, "add_copies")
}

// WriteOffCopy permanently removes one copy that is out of the building (usually after a loss).
// Only total_copies shrinks; a copy on the shelf cannot be written off this way.
func (l *InventoryLedger) WriteOffCopy(ctx context.Context, tx *repositories.Store, item *models.Item) error {
	prev := repositories.StateOf(item)
	if prev.Total <= prev.Available {
		return fmt.Errorf("%w: every copy of item %d is on the shelf", domain.ErrInvalidState, item.ID)
	}

	next := prev
	next.Total--
	return l.swap(ctx, tx, item, prev, next, "write_off")
}

// swap writes next and mirrors it into item. A lost compare-and-swap means the row
// was written without holding its lock.
func (l *InventoryLedger) swap(ctx context.Context, tx *repositories.Store, item *models.Item, prev, next repositories.CopyState, op string) error {
	ok, err := tx.Items.SwapCopies(ctx, item.ID, prev, next)
	if err != nil {
		return err
	}
	if !ok {
		if op == "decrement" {
			return l.violation(item, op, domain.ErrInsufficientCopies)
		}
		return l.violation(item, op, domain.ErrStaleItem)
	}

	item.AvailableCopies = next.Available
	item.TotalCopies = next.Total
	item.Status = next.Status
	return nil
}

func (l *InventoryLedger) violation(item *models.Item, op string, err error) error {
	log.Printf("❌ consistency violation: %s on item %d (available=%d total=%d status=%s): %v",
		op, item.ID, item.AvailableCopies, item.TotalCopies, item.Status, err)
	return fmt.Errorf("item %d %s: %w", item.ID, op, err)
}

// deriveStatus keeps status == available exactly when copies are on the shelf.
// Maintenance is sticky until SetMaintenance(false).
func deriveStatus(available int, current string) string {
	if current == models.ItemStatusMaintenance {
		return models.ItemStatusMaintenance
	}
	if available > 0 {
		return models.ItemStatusAvailable
	}
	return models.ItemStatusBorrowed
}
