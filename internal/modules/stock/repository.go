package stock

import (
	"context"
	"time"
)

// Repository defines data access for stock items and units.
type Repository interface {
	CreateItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, id string) (*Item, error)

	// ListItemSummaries returns every item newest first with its unit counts.
	ListItemSummaries(ctx context.Context) ([]*ItemSummary, error)

	// CreateUnit inserts one unit. A taken barcode yields apperr.ErrDuplicate.
	CreateUnit(ctx context.Context, u *Unit) error

	// CreateUnits inserts units in one transaction, skipping barcodes that
	// already exist, and returns how many were inserted.
	CreateUnits(ctx context.Context, units []*Unit) (int, error)

	GetUnit(ctx context.Context, id string) (*Unit, error)
	GetUnitByBarcode(ctx context.Context, barcode string) (*Unit, error)
	ListUnits(ctx context.Context, itemID string) ([]*Unit, error)

	// UnitAssigned reports whether any order references the unit.
	UnitAssigned(ctx context.Context, unitID string) (bool, error)
	DeleteUnit(ctx context.Context, id string) error

	// BatchNumbers returns the distinct non-empty batch numbers of an item.
	BatchNumbers(ctx context.Context, itemID string) ([]string, error)

	// LowStock returns items whose current_stock is at or below threshold, lowest first.
	LowStock(ctx context.Context, threshold int, limit int) ([]*Item, error)

	// Expiring returns items expiring within [from, to], soonest first.
	Expiring(ctx context.Context, from, to time.Time, limit int) ([]*Item, error)
}
