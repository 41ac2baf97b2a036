package order

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/georgemunganga/life360-ops/internal/modules/stock"
	"github.com/google/uuid"
)

// memoryRepo is an in-memory Repository with the same availability guard
// as the postgres implementation.
type memoryRepo struct {
	mu          sync.Mutex
	orders      map[uuid.UUID]*Order
	units       map[uuid.UUID]*stock.Unit
	assignments map[uuid.UUID]*AssignedUnit
	logs        []*CallLog
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders:      make(map[uuid.UUID]*Order),
		units:       make(map[uuid.UUID]*stock.Unit),
		assignments: make(map[uuid.UUID]*AssignedUnit),
	}
}

func (m *memoryRepo) addUnit(barcode string, status stock.UnitStatus) *stock.Unit {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &stock.Unit{ID: uuid.New(), ItemID: uuid.New(), Barcode: barcode, Status: status}
	m.units[u.ID] = u
	return u
}

func (m *memoryRepo) unitStatus(barcode string) stock.UnitStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.units {
		if u.Barcode == barcode {
			return u.Status
		}
	}
	return ""
}

func cloneOrder(o *Order) *Order {
	cp := *o
	cp.Items = append([]*Item(nil), o.Items...)
	cp.Units = nil
	cp.CallLogs = nil
	return &cp
}

func (m *memoryRepo) CreateOrder(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.orders {
		if existing.OrderNumber == o.OrderNumber {
			return apperr.Duplicate("Order number %s is already taken.", o.OrderNumber)
		}
	}
	m.orders[o.ID] = cloneOrder(o)
	return nil
}

func (m *memoryRepo) GetOrder(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("Order not found.")
	}
	o, ok := m.orders[uid]
	if !ok {
		return nil, apperr.NotFound("Order not found.")
	}
	return cloneOrder(o), nil
}

func (m *memoryRepo) GetOrderByNumber(_ context.Context, number string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.OrderNumber == number {
			return cloneOrder(o), nil
		}
	}
	return nil, apperr.NotFound("Order not found.")
}

func (m *memoryRepo) ListOrders(_ context.Context, limit int) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Order
	for _, o := range m.orders {
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRepo) UpdateOrder(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; !ok {
		return apperr.NotFound("Order not found.")
	}
	m.orders[o.ID] = cloneOrder(o)
	return nil
}

func (m *memoryRepo) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, _ := uuid.Parse(id)
	if _, ok := m.orders[uid]; !ok {
		return apperr.NotFound("Order not found.")
	}
	delete(m.orders, uid)
	return nil
}

func (m *memoryRepo) Summary(_ context.Context) (*Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &Summary{Total: len(m.orders)}
	for _, o := range m.orders {
		l := strings.ToLower(string(o.Status))
		if strings.Contains(l, "completed") {
			s.Completed++
		}
		if strings.Contains(l, "cancel") {
			s.Cancelled++
		}
	}
	s.Pending = s.Total - s.Completed - s.Cancelled
	return s, nil
}

func (m *memoryRepo) ProviderCounts(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int)
	for _, o := range m.orders {
		out[o.Provider]++
	}
	return out, nil
}

func (m *memoryRepo) FindUnitByBarcode(_ context.Context, barcode string) (*stock.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.units {
		if u.Barcode == barcode {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Barcode not found in stock.")
}

func (m *memoryRepo) AssignUnit(_ context.Context, au *AssignedUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[au.UnitID]
	if !ok {
		return apperr.NotFound("Barcode not found in stock.")
	}
	if u.Status != stock.UnitInStock {
		return apperr.NotAvailable("Unit %s is not available (status: %s).", u.Barcode, u.Status)
	}
	u.Status = stock.UnitAssigned
	u.LastUpdate = au.AssignedAt
	cp := *au
	m.assignments[au.ID] = &cp
	return nil
}

func (m *memoryRepo) GetAssignment(_ context.Context, id string) (*AssignedUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("Assignment not found.")
	}
	au, ok := m.assignments[uid]
	if !ok {
		return nil, apperr.NotFound("Assignment not found.")
	}
	cp := *au
	return &cp, nil
}

func (m *memoryRepo) UnassignUnit(_ context.Context, au *AssignedUnit, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[au.ID]; !ok {
		return apperr.NotFound("Assignment not found.")
	}
	delete(m.assignments, au.ID)
	if u, ok := m.units[au.UnitID]; ok {
		u.Status = stock.UnitInStock
		u.LastUpdate = at
	}
	return nil
}

func (m *memoryRepo) ListAssignments(_ context.Context) ([]*AssignedUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*AssignedUnit
	for _, au := range m.assignments {
		cp := *au
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memoryRepo) CountAssignments(_ context.Context, orderID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, au := range m.assignments {
		if au.OrderID.String() == orderID {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) CountCallLogs(_ context.Context, orderID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, cl := range m.logs {
		if cl.OrderID.String() == orderID {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) AddCallLog(_ context.Context, cl *CallLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cl
	m.logs = append(m.logs, &cp)
	return nil
}

func (m *memoryRepo) ListCallLogs(_ context.Context) ([]*CallLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*CallLog(nil), m.logs...), nil
}
