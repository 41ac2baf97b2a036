package order

import (
	"context"
	"time"

	"github.com/georgemunganga/life360-ops/internal/modules/stock"
)

// Repository defines data access for orders and their fulfilment records.
type Repository interface {
	// CreateOrder persists a new order and its items atomically in a transaction.
	CreateOrder(ctx context.Context, o *Order) error

	// GetOrder retrieves an order with its items by UUID.
	GetOrder(ctx context.Context, id string) (*Order, error)

	// GetOrderByNumber retrieves an order with its items by its human-readable number.
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)

	// ListOrders returns orders newest first with their items. limit <= 0 returns all.
	ListOrders(ctx context.Context, limit int) ([]*Order, error)

	// UpdateOrder writes the editable fields, flags and completion time.
	UpdateOrder(ctx context.Context, o *Order) error

	// DeleteOrder removes an order and its items. Orders with call logs or
	// assigned units are refused.
	DeleteOrder(ctx context.Context, id string) error

	Summary(ctx context.Context) (*Summary, error)

	// ProviderCounts returns the number of orders per stored provider value.
	ProviderCounts(ctx context.Context) (map[string]int, error)

	// FindUnitByBarcode looks up a stock unit for assignment.
	FindUnitByBarcode(ctx context.Context, barcode string) (*stock.Unit, error)

	// AssignUnit marks the unit Assigned and records the link in one transaction.
	// The unit must still be In Stock when the transaction runs.
	AssignUnit(ctx context.Context, au *AssignedUnit) error

	GetAssignment(ctx context.Context, id string) (*AssignedUnit, error)

	// UnassignUnit deletes the link and returns the unit to In Stock in one transaction.
	UnassignUnit(ctx context.Context, au *AssignedUnit, at time.Time) error

	ListAssignments(ctx context.Context) ([]*AssignedUnit, error)
	CountAssignments(ctx context.Context, orderID string) (int, error)

	AddCallLog(ctx context.Context, cl *CallLog) error
	ListCallLogs(ctx context.Context) ([]*CallLog, error)
	CountCallLogs(ctx context.Context, orderID string) (int, error)
}
