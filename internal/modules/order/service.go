package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/georgemunganga/life360-ops/internal/forms"
	"github.com/georgemunganga/life360-ops/internal/modules/provider"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxItemSlots is the number of line-item slots on the create form.
const maxItemSlots = 3

// Service defines the order fulfilment business logic.
type Service interface {
	// Create persists a new order with up to three line items.
	Create(ctx context.Context, req CreateOrderRequest) (*Order, error)

	Get(ctx context.Context, id string) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)

	// Update applies the edit form. Text fields fall back to their previous
	// value, flags are taken as submitted and the completion time is re-derived.
	Update(ctx context.Context, id string, req UpdateOrderRequest) (*Order, error)

	// Delete removes an order that has no assigned units.
	Delete(ctx context.Context, id string) error

	// Board returns every order with its units, call logs, bucket and SLA window.
	Board(ctx context.Context) (*Board, error)

	// Recent returns the newest orders with items. limit <= 0 returns all.
	Recent(ctx context.Context, limit int) ([]*Order, error)

	Summary(ctx context.Context) (*Summary, error)
	ProviderCounts(ctx context.Context) (map[string]int, error)

	// Assign links the In Stock unit with this barcode to the order.
	Assign(ctx context.Context, orderID, barcode string) (*AssignedUnit, error)

	// Unassign releases a unit back to stock. The assignment must belong to orderID.
	Unassign(ctx context.Context, orderID, assignmentID string) (*AssignedUnit, error)

	AddCallLog(ctx context.Context, orderID string, req CallLogRequest) (*CallLog, error)
}

// ChangeNotifier is told when order data changes, so cached views can be dropped.
type ChangeNotifier interface {
	OrdersChanged(ctx context.Context)
}

// Config tunes the order service.
type Config struct {
	SLAHours int
	Notifier ChangeNotifier
}

type service struct {
	repo     Repository
	slaHours int
	notifier ChangeNotifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new order service.
func NewService(repo Repository, cfg Config, logger *zap.Logger) Service {
	sla := cfg.SLAHours
	if sla <= 0 {
		sla = DefaultSLAHours
	}
	return &service{
		repo:     repo,
		slaHours: sla,
		notifier: cfg.Notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	now := s.now().UTC()
	orderedAt, ok := forms.ParseTimestamp(req.OrderedAt)
	if !ok {
		orderedAt = now
	}
	status := Status(strings.TrimSpace(req.Status))
	if status == "" {
		status = StatusPending
	}

	o := &Order{
		ID:               uuid.New(),
		OrderNumber:      generateOrderNumber(now),
		Provider:         provider.Normalize(strings.TrimSpace(req.Provider)),
		Name:             strings.TrimSpace(req.Name),
		Surname:          strings.TrimSpace(req.Surname),
		PractitionerName: forms.Optional(req.PractitionerName),
		Notes:            forms.Optional(req.Notes),
		OrderedAt:        orderedAt,
		Status:           status,
		CreatedAt:        now,
		Items:            buildItems(req.Items),
	}
	applyCompletion(o, now)
	for _, it := range o.Items {
		it.OrderID = o.ID
	}

	// Order numbers carry a short random suffix; retry on the rare collision.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if err = s.repo.CreateOrder(ctx, o); !errors.Is(err, apperr.ErrDuplicate) {
			break
		}
		o.OrderNumber = generateOrderNumber(now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("provider", o.Provider),
		zap.Int("items", len(o.Items)))
	s.changed(ctx)
	return o, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return s.repo.GetOrderByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

func (s *service) Update(ctx context.Context, id string, req UpdateOrderRequest) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	o.PractitionerName = forms.Optional(fallback(req.PractitionerName, forms.Deref(o.PractitionerName)))
	o.Status = Status(strings.TrimSpace(fallback(strings.TrimSpace(req.Status), string(o.Status), string(StatusPending))))
	o.Notes = forms.Optional(fallback(req.Notes, forms.Deref(o.Notes)))
	o.Flags = req.Flags
	applyCompletion(o, s.now())
	o.EmailStatus = forms.Optional(fallback(req.EmailStatus, forms.Deref(o.EmailStatus)))

	if err := s.repo.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("order updated",
		zap.String("order_id", o.ID.String()),
		zap.String("status", string(o.Status)),
		zap.String("bucket", string(BucketOf(o))))
	s.changed(ctx)
	return o, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.repo.CountAssignments(ctx, o.ID.String())
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.NotAvailable("Cannot delete: order has assigned units.")
	}
	logs, err := s.repo.CountCallLogs(ctx, o.ID.String())
	if err != nil {
		return err
	}
	if logs > 0 {
		return apperr.NotAvailable("Cannot delete: order has call logs.")
	}
	if err := s.repo.DeleteOrder(ctx, o.ID.String()); err != nil {
		return err
	}
	s.logger.Info("order deleted", zap.String("order_id", o.ID.String()))
	s.changed(ctx)
	return nil
}

func (s *service) Board(ctx context.Context) (*Board, error) {
	orders, err := s.repo.ListOrders(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	assignments, err := s.repo.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	logs, err := s.repo.ListCallLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list call logs: %w", err)
	}

	byID := make(map[uuid.UUID]*Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	for _, au := range assignments {
		if o, ok := byID[au.OrderID]; ok {
			o.Units = append(o.Units, au)
		}
	}
	for _, cl := range logs {
		if o, ok := byID[cl.OrderID]; ok {
			o.CallLogs = append(o.CallLogs, cl)
		}
	}

	now := s.now()
	pending := newGrouper()
	completed := newGrouper()
	for _, o := range orders {
		o.Provider = provider.Normalize(o.Provider)
		e := &BoardEntry{Order: o, Bucket: BucketOf(o), TimeLeft: ComputeTimeLeft(o.CreatedAt, s.slaHours, now)}
		if e.Bucket == BucketCompleted {
			completed.add(e)
		} else {
			pending.add(e)
		}
	}
	return &Board{Pending: pending.groups(), Completed: completed.groups()}, nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]*Order, error) {
	orders, err := s.repo.ListOrders(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Provider = provider.Normalize(o.Provider)
	}
	return orders, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	return s.repo.Summary(ctx)
}

func (s *service) ProviderCounts(ctx context.Context) (map[string]int, error) {
	raw, err := s.repo.ProviderCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(raw))
	for p, n := range raw {
		if p = provider.Normalize(p); p == "" {
			p = "Unknown"
		}
		out[p] += n
	}
	return out, nil
}

func (s *service) Assign(ctx context.Context, orderID, barcode string) (*AssignedUnit, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, apperr.Validation("Scan or enter a barcode.")
	}
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	unit, err := s.repo.FindUnitByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if !unit.Available() {
		return nil, apperr.NotAvailable("Unit %s is not available (status: %s).", barcode, unit.Status)
	}

	au := &AssignedUnit{
		ID:         uuid.New(),
		OrderID:    o.ID,
		UnitID:     unit.ID,
		Barcode:    unit.Barcode,
		AssignedAt: s.now().UTC(),
	}
	if err := s.repo.AssignUnit(ctx, au); err != nil {
		return nil, err
	}
	s.logger.Info("unit assigned",
		zap.String("order_number", o.OrderNumber), zap.String("barcode", barcode))
	s.changed(ctx)
	return au, nil
}

func (s *service) Unassign(ctx context.Context, orderID, assignmentID string) (*AssignedUnit, error) {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return nil, apperr.NotFound("Order not found.")
	}
	au, err := s.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if au.OrderID != oid {
		return nil, apperr.Mismatch("Unit %s is not assigned to this order.", au.Barcode)
	}
	if err := s.repo.UnassignUnit(ctx, au, s.now().UTC()); err != nil {
		return nil, err
	}
	s.logger.Info("unit unassigned",
		zap.String("order_id", oid.String()), zap.String("barcode", au.Barcode))
	s.changed(ctx)
	return au, nil
}

func (s *service) AddCallLog(ctx context.Context, orderID string, req CallLogRequest) (*CallLog, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	summary := strings.TrimSpace(req.Summary)
	if summary == "" {
		return nil, apperr.Validation("Call log requires a summary.")
	}
	cl := &CallLog{
		ID:       uuid.New(),
		OrderID:  o.ID,
		LoggedAt: s.now().UTC(),
		Author:   forms.Optional(req.Author),
		Summary:  summary,
		Outcome:  forms.Optional(req.Outcome),
	}
	if err := s.repo.AddCallLog(ctx, cl); err != nil {
		return nil, err
	}
	return cl, nil
}

func (s *service) changed(ctx context.Context) {
	if s.notifier != nil {
		s.notifier.OrdersChanged(ctx)
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// buildItems reads the line-item slots. A slot needs both a SKU and a
// quantity; a quantity that is not a positive integer becomes 1.
func buildItems(inputs []ItemInput) []*Item {
	var items []*Item
	for i, in := range inputs {
		if i >= maxItemSlots {
			break
		}
		sku := strings.TrimSpace(in.SKU)
		qtyRaw := strings.TrimSpace(in.Qty)
		if sku == "" || qtyRaw == "" {
			continue
		}
		qty, err := strconv.Atoi(qtyRaw)
		if err != nil || qty < 1 {
			qty = 1
		}
		items = append(items, &Item{ID: uuid.New(), SKU: sku, Qty: qty})
	}
	return items
}

// fallback returns the first non-empty value.
func fallback(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type grouper struct {
	byProvider map[string]*ProviderGroup
	keys       []string
}

func newGrouper() *grouper {
	return &grouper{byProvider: make(map[string]*ProviderGroup)}
}

func (g *grouper) add(e *BoardEntry) {
	key := provider.OrUnassigned(e.Provider)
	pg, ok := g.byProvider[key]
	if !ok {
		pg = &ProviderGroup{Provider: key}
		g.byProvider[key] = pg
		g.keys = append(g.keys, key)
	}
	pg.Orders = append(pg.Orders, e)
}

func (g *grouper) groups() []*ProviderGroup {
	provider.SortGroups(g.keys)
	out := make([]*ProviderGroup, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, g.byProvider[k])
	}
	return out
}

// generateOrderNumber creates a human-readable order number: ORD-YYYYMMDD-XXXX
func generateOrderNumber(now time.Time) string {
	date := now.UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("ORD-%s-%s", date, suffix)
}
