package stock

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/georgemunganga/life360-ops/internal/forms"
	"github.com/georgemunganga/life360-ops/internal/modules/provider"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultLowStockThreshold = 2
	defaultExpiringDays      = 30
	queryLimit               = 200
)

// Service defines the stock registry business logic.
type Service interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)

	// Overview groups items by canonical provider with unit counts and batch summaries.
	Overview(ctx context.Context) ([]*ProviderGroup, error)

	ListUnits(ctx context.Context, itemID string) ([]*Unit, error)

	// RegisterUnit adds one barcode. Barcodes are unique across all items.
	RegisterUnit(ctx context.Context, itemID, barcode, batch string) (*Unit, error)

	// RegisterUnitsBulk adds every new barcode in raw and returns how many were added.
	RegisterUnitsBulk(ctx context.Context, itemID, raw, defaultBatch string) (int, error)

	// DeleteUnit removes a unit that is not assigned to an order and returns it.
	DeleteUnit(ctx context.Context, unitID string) (*Unit, error)

	// BatchSummary describes the batch numbers of an item's units: "-" when
	// none, the single batch, or "Mixed (n)".
	BatchSummary(ctx context.Context, itemID string) (string, error)

	LowStock(ctx context.Context, threshold int) ([]*Item, error)
	Expiring(ctx context.Context, days int) ([]*Item, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new stock service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger, now: time.Now}
}

func (s *service) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("Name is required.")
	}
	current, err := strconv.Atoi(strings.TrimSpace(req.CurrentStock))
	if err != nil {
		current = 0
	}
	it := &Item{
		ID:           uuid.New(),
		Name:         name,
		Provider:     provider.OrUnassigned(req.Provider),
		ExpiryDate:   forms.ParseDate(req.ExpiryDate),
		ReceivedDate: forms.ParseDate(req.ReceivedDate),
		CurrentStock: current,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateItem(ctx, it); err != nil {
		return nil, err
	}
	s.logger.Info("stock item created", zap.String("item_id", it.ID.String()), zap.String("provider", it.Provider))
	return it, nil
}

func (s *service) GetItem(ctx context.Context, id string) (*Item, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *service) Overview(ctx context.Context) ([]*ProviderGroup, error) {
	items, err := s.repo.ListItemSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	byProvider := make(map[string]*ProviderGroup)
	var keys []string
	for _, it := range items {
		batches, err := s.repo.BatchNumbers(ctx, it.ID.String())
		if err != nil {
			return nil, fmt.Errorf("batch numbers for %s: %w", it.ID, err)
		}
		it.Batch = SummarizeBatches(batches)
		it.Provider = provider.OrUnassigned(it.Provider)

		g, ok := byProvider[it.Provider]
		if !ok {
			g = &ProviderGroup{Provider: it.Provider}
			byProvider[it.Provider] = g
			keys = append(keys, it.Provider)
		}
		g.Items = append(g.Items, it)
	}
	provider.SortGroups(keys)
	groups := make([]*ProviderGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, byProvider[k])
	}
	return groups, nil
}

func (s *service) ListUnits(ctx context.Context, itemID string) ([]*Unit, error) {
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListUnits(ctx, itemID)
}

func (s *service) RegisterUnit(ctx context.Context, itemID, barcode, batch string) (*Unit, error) {
	it, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, apperr.Validation("Scan or enter a barcode.")
	}
	if _, err := s.repo.GetUnitByBarcode(ctx, barcode); err == nil {
		return nil, apperr.Duplicate("This barcode already exists.")
	} else if !isNotFound(err) {
		return nil, err
	}

	u := s.newUnit(it.ID, barcode, forms.Optional(batch))
	if err := s.repo.CreateUnit(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("unit registered", zap.String("item_id", it.ID.String()), zap.String("barcode", barcode))
	return u, nil
}

func (s *service) RegisterUnitsBulk(ctx context.Context, itemID, raw, defaultBatch string) (int, error) {
	it, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool)
	var units []*Unit
	for _, line := range ParseBulk(raw) {
		if seen[line.Barcode] {
			continue
		}
		seen[line.Barcode] = true
		batch := line.Batch
		if batch == "" {
			batch = defaultBatch
		}
		units = append(units, s.newUnit(it.ID, line.Barcode, forms.Optional(batch)))
	}
	if len(units) == 0 {
		return 0, nil
	}
	n, err := s.repo.CreateUnits(ctx, units)
	if err != nil {
		return 0, err
	}
	s.logger.Info("units registered in bulk",
		zap.String("item_id", it.ID.String()), zap.Int("lines", len(units)), zap.Int("added", n))
	return n, nil
}

func (s *service) DeleteUnit(ctx context.Context, unitID string) (*Unit, error) {
	u, err := s.repo.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.repo.UnitAssigned(ctx, u.ID.String())
	if err != nil {
		return nil, err
	}
	if assigned {
		return nil, apperr.NotAvailable("Cannot delete: unit assigned to order.")
	}
	if err := s.repo.DeleteUnit(ctx, u.ID.String()); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) BatchSummary(ctx context.Context, itemID string) (string, error) {
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return "", err
	}
	batches, err := s.repo.BatchNumbers(ctx, itemID)
	if err != nil {
		return "", err
	}
	return SummarizeBatches(batches), nil
}

func (s *service) LowStock(ctx context.Context, threshold int) ([]*Item, error) {
	if threshold < 0 {
		threshold = defaultLowStockThreshold
	}
	return s.repo.LowStock(ctx, threshold, queryLimit)
}

func (s *service) Expiring(ctx context.Context, days int) ([]*Item, error) {
	if days <= 0 {
		days = defaultExpiringDays
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.repo.Expiring(ctx, today, today.AddDate(0, 0, days), queryLimit)
}

func (s *service) newUnit(itemID uuid.UUID, barcode string, batch *string) *Unit {
	now := s.now().UTC()
	return &Unit{
		ID:          uuid.New(),
		ItemID:      itemID,
		Barcode:     barcode,
		BatchNumber: batch,
		Status:      UnitInStock,
		LastUpdate:  now,
		CreatedAt:   now,
	}
}

// ── helpers ──────────────────────────────────────────────────────────────────

var bulkSeparator = regexp.MustCompile(`[,\t|]+`)

// ParseBulk splits a pasted barcode list. Each line is "BARCODE", or
// "BARCODE" followed by a batch number after a comma, tab or pipe.
// Blank lines are skipped.
func ParseBulk(raw string) []BulkLine {
	var out []BulkLine
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var parts []string
		for _, p := range bulkSeparator.Split(line, 2) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		bl := BulkLine{Barcode: parts[0]}
		if len(parts) > 1 {
			bl.Batch = parts[1]
		}
		out = append(out, bl)
	}
	return out
}

// SummarizeBatches renders the distinct batch numbers of an item:
// "-" when there are none, the value itself when there is one, else "Mixed (N)".
func SummarizeBatches(batches []string) string {
	distinct := make(map[string]struct{})
	var first string
	for _, b := range batches {
		if b == "" {
			continue
		}
		if len(distinct) == 0 {
			first = b
		}
		distinct[b] = struct{}{}
	}
	switch len(distinct) {
	case 0:
		return "-"
	case 1:
		return first
	default:
		return fmt.Sprintf("Mixed (%d)", len(distinct))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
