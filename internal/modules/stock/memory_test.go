package stock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/georgemunganga/life360-ops/internal/apperr"
)

// memoryRepo is an in-memory Repository used by the service and handler tests.
type memoryRepo struct {
	mu       sync.RWMutex
	items    map[string]*Item
	units    map[string]*Unit
	assigned map[string]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		items:    make(map[string]*Item),
		units:    make(map[string]*Unit),
		assigned: make(map[string]bool),
	}
}

func (m *memoryRepo) CreateItem(_ context.Context, it *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *it
	m.items[it.ID.String()] = &cp
	return nil
}

func (m *memoryRepo) GetItem(_ context.Context, id string) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Stock item not found.")
	}
	cp := *it
	return &cp, nil
}

func (m *memoryRepo) ListItemSummaries(_ context.Context) ([]*ItemSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*ItemSummary
	for _, it := range m.items {
		cp := *it
		s := &ItemSummary{Item: &cp}
		for _, u := range m.units {
			if u.ItemID == it.ID {
				s.TotalUnits++
				if u.Status == UnitInStock {
					s.InStockUnits++
				}
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryRepo) barcodeTaken(barcode string) bool {
	for _, u := range m.units {
		if u.Barcode == barcode {
			return true
		}
	}
	return false
}

func (m *memoryRepo) CreateUnit(_ context.Context, u *Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.barcodeTaken(u.Barcode) {
		return apperr.Duplicate("This barcode already exists.")
	}
	cp := *u
	m.units[u.ID.String()] = &cp
	return nil
}

func (m *memoryRepo) CreateUnits(_ context.Context, units []*Unit) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range units {
		if m.barcodeTaken(u.Barcode) {
			continue
		}
		cp := *u
		m.units[u.ID.String()] = &cp
		n++
	}
	return n, nil
}

func (m *memoryRepo) GetUnit(_ context.Context, id string) (*Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.units[id]
	if !ok {
		return nil, apperr.NotFound("Unit not found.")
	}
	cp := *u
	return &cp, nil
}

func (m *memoryRepo) GetUnitByBarcode(_ context.Context, barcode string) (*Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.units {
		if u.Barcode == barcode {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Barcode not found in stock.")
}

func (m *memoryRepo) ListUnits(_ context.Context, itemID string) ([]*Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Unit
	for _, u := range m.units {
		if u.ItemID.String() == itemID {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryRepo) UnitAssigned(_ context.Context, unitID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.assigned[unitID], nil
}

func (m *memoryRepo) DeleteUnit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.units[id]; !ok {
		return apperr.NotFound("Unit not found.")
	}
	delete(m.units, id)
	return nil
}

func (m *memoryRepo) BatchNumbers(_ context.Context, itemID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, u := range m.units {
		if u.ItemID.String() != itemID || u.BatchNumber == nil || *u.BatchNumber == "" {
			continue
		}
		if !seen[*u.BatchNumber] {
			seen[*u.BatchNumber] = true
			out = append(out, *u.BatchNumber)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memoryRepo) LowStock(_ context.Context, threshold int, limit int) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Item
	for _, it := range m.items {
		if it.CurrentStock <= threshold {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrentStock < out[j].CurrentStock })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRepo) Expiring(_ context.Context, from, to time.Time, limit int) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Item
	for _, it := range m.items {
		if it.ExpiryDate == nil || it.ExpiryDate.Before(from) || it.ExpiryDate.After(to) {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(*out[j].ExpiryDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
