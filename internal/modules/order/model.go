package order

import (
	"time"

	"github.com/google/uuid"
)

// Bucket is the dashboard grouping derived from an order's flags and status.
type Bucket string

const (
	BucketPending   Bucket = "pending"
	BucketCompleted Bucket = "completed"
)

// Flags are the six independent fulfilment checkpoints of an order.
type Flags struct {
	SentOut       bool `json:"sent_out"`
	ReceivedBack  bool `json:"received_back"`
	KitRegistered bool `json:"kit_registered"`
	ResultsSent   bool `json:"results_sent"`
	Paid          bool `json:"paid"`
	Invoiced      bool `json:"invoiced"`
}

// Order is a customer kit order and its fulfilment state.
type Order struct {
	ID               uuid.UUID `json:"id"`
	OrderNumber      string    `json:"order_number"`
	Provider         string    `json:"provider"`
	Name             string    `json:"name"`
	Surname          string    `json:"surname"`
	PractitionerName *string   `json:"practitioner_name,omitempty"`
	OrderedAt        time.Time `json:"ordered_at"`
	Status           Status    `json:"status"`
	Notes            *string   `json:"notes,omitempty"`
	EmailStatus      *string   `json:"email_status,omitempty"`
	Flags
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Items    []*Item         `json:"items"`
	Units    []*AssignedUnit `json:"units,omitempty"`
	CallLogs []*CallLog      `json:"call_logs,omitempty"`
}

// Item is an order line: a SKU and a quantity of at least one.
type Item struct {
	ID      uuid.UUID `json:"id"`
	OrderID uuid.UUID `json:"order_id"`
	SKU     string    `json:"sku"`
	Qty     int       `json:"qty"`
}

// AssignedUnit links a physical stock unit to an order.
type AssignedUnit struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	UnitID     uuid.UUID `json:"unit_id"`
	Barcode    string    `json:"barcode"`
	AssignedAt time.Time `json:"assigned_at"`
}

// CallLog is an append-only note of a phone call about an order.
type CallLog struct {
	ID       uuid.UUID `json:"id"`
	OrderID  uuid.UUID `json:"order_id"`
	LoggedAt time.Time `json:"logged_at"`
	Author   *string   `json:"author,omitempty"`
	Summary  string    `json:"summary"`
	Outcome  *string   `json:"outcome,omitempty"`
}

// Summary counts orders by status family.
type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Pending   int `json:"pending"`
}

// BoardEntry is an order as shown on the fulfilment board.
type BoardEntry struct {
	*Order
	Bucket   Bucket   `json:"bucket"`
	TimeLeft TimeLeft `json:"time_left"`
}

// ProviderGroup holds the board entries of one canonical provider.
type ProviderGroup struct {
	Provider string        `json:"provider"`
	Orders   []*BoardEntry `json:"orders"`
}

// Board is the fulfilment board: pending and completed buckets, each grouped by provider.
type Board struct {
	Pending   []*ProviderGroup `json:"pending"`
	Completed []*ProviderGroup `json:"completed"`
}

// ItemInput is one of the line-item slots of the create form.
type ItemInput struct {
	SKU string
	Qty string
}

// CreateOrderRequest carries the new-order form.
type CreateOrderRequest struct {
	Provider         string
	Name             string
	Surname          string
	PractitionerName string
	Notes            string
	OrderedAt        string
	Status           string
	Items            []ItemInput
}

// UpdateOrderRequest carries the order edit form. Empty text fields keep
// their previous value; Flags are taken as submitted.
type UpdateOrderRequest struct {
	PractitionerName string
	Status           string
	Notes            string
	EmailStatus      string
	Flags            Flags
}

// CallLogRequest carries a new call log entry.
type CallLogRequest struct {
	Author  string
	Summary string
	Outcome string
}
