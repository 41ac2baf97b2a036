package stock

import (
	"time"

	"github.com/google/uuid"
)

// UnitStatus is the lifecycle state of a physical unit.
type UnitStatus string

const (
	UnitInStock  UnitStatus = "In Stock"
	UnitAssigned UnitStatus = "Assigned"
)

// Item is an inventory line, usually one kit SKU, owned by a provider.
type Item struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Provider     string     `json:"provider"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	ReceivedDate *time.Time `json:"received_date,omitempty"`
	CurrentStock int        `json:"current_stock"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Unit is one physical barcoded kit belonging to an Item.
type Unit struct {
	ID          uuid.UUID  `json:"id"`
	ItemID      uuid.UUID  `json:"item_id"`
	Barcode     string     `json:"barcode"`
	BatchNumber *string    `json:"batch_number,omitempty"`
	Status      UnitStatus `json:"status"`
	LastUpdate  time.Time  `json:"last_update"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Available reports whether the unit can be assigned to an order.
func (u *Unit) Available() bool { return u.Status == UnitInStock }

// ItemSummary is an Item with its unit counts, as shown on the stock overview.
type ItemSummary struct {
	*Item
	TotalUnits   int    `json:"total_units"`
	InStockUnits int    `json:"in_stock_units"`
	Batch        string `json:"batch"`
}

// ProviderGroup holds the items of one canonical provider.
type ProviderGroup struct {
	Provider string         `json:"provider"`
	Items    []*ItemSummary `json:"items"`
}

// CreateItemRequest carries the stock item form.
type CreateItemRequest struct {
	Name         string `json:"name"`
	Provider     string `json:"provider"`
	ExpiryDate   string `json:"expiry_date"`
	ReceivedDate string `json:"received_date"`
	CurrentStock string `json:"current_stock"`
}

// BulkLine is one parsed line of a bulk barcode paste.
type BulkLine struct {
	Barcode string
	Batch   string
}
