package assistant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/georgemunganga/life360-ops/internal/modules/order"
	"github.com/georgemunganga/life360-ops/internal/modules/stock"
	"go.uber.org/zap"
)

const (
	systemPrompt = "Be concise, numeric. Provide short lists for stock/orders."
	answerItems  = 20
)

type OrderSource interface {
	Summary(ctx context.Context) (*order.Summary, error)
	ProviderCounts(ctx context.Context) (map[string]int, error)
	GetByNumber(ctx context.Context, number string) (*order.Order, error)
}

type StockSource interface {
	LowStock(ctx context.Context, threshold int) ([]*stock.Item, error)
	Expiring(ctx context.Context, days int) ([]*stock.Item, error)
}

// Model answers free-form questions.
type Model interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Answer is the reply to a prompt. Items is set only for JSON requests.
type Answer struct {
	OK        bool        `json:"ok"`
	Answer    string      `json:"answer,omitempty"`
	Items     interface{} `json:"items,omitempty"`
	Threshold *int        `json:"threshold,omitempty"`
	Days      *int        `json:"days,omitempty"`
	Total     *int        `json:"total,omitempty"`
}

type LowStockItem struct {
	Name     string `json:"name"`
	Qty      int    `json:"qty"`
	Provider string `json:"provider"`
}

type ExpiringItem struct {
	Name     string `json:"name"`
	Expires  string `json:"expires"`
	Provider string `json:"provider"`
}

type Service struct {
	orders OrderSource
	stock  StockSource
	model  Model
	logger *zap.Logger
}

func NewService(orders OrderSource, stock StockSource, model Model, logger *zap.Logger) *Service {
	return &Service{orders: orders, stock: stock, model: model, logger: logger}
}

// Ask answers from the store when the intent is recognised and otherwise
// asks the model, falling back to a local summary.
func (s *Service) Ask(ctx context.Context, prompt string) (*Answer, error) {
	q := Parse(prompt)
	switch q.Intent {
	case IntentPendingCount, IntentCompletedCount:
		sum, err := s.orders.Summary(ctx)
		if err != nil {
			return nil, err
		}
		if q.Intent == IntentPendingCount {
			return text(fmt.Sprintf("%d pending orders.", sum.Pending)), nil
		}
		return text(fmt.Sprintf("%d completed orders.", sum.Completed)), nil
	case IntentLowStock:
		return s.lowStock(ctx, q)
	case IntentExpiringStock:
		return s.expiring(ctx, q)
	case IntentOrderLookup:
		return s.lookup(ctx, q)
	}
	return s.freeform(ctx, q)
}

func (s *Service) lowStock(ctx context.Context, q Query) (*Answer, error) {
	items, err := s.stock.LowStock(ctx, q.Threshold)
	if err != nil {
		return nil, err
	}
	low := make([]LowStockItem, 0, len(items))
	for _, it := range items {
		low = append(low, LowStockItem{Name: it.Name, Qty: it.CurrentStock, Provider: it.Provider})
	}
	if q.JSON {
		n := len(low)
		return &Answer{OK: true, Items: low, Threshold: &q.Threshold, Total: &n}, nil
	}
	parts := make([]string, 0, answerItems)
	for i, it := range low {
		if i == answerItems {
			break
		}
		parts = append(parts, fmt.Sprintf("%s(%d)", it.Name, it.Qty))
	}
	if len(parts) == 0 {
		return text("No low-stock items found."), nil
	}
	return text(strings.Join(parts, ", ")), nil
}

func (s *Service) expiring(ctx context.Context, q Query) (*Answer, error) {
	items, err := s.stock.Expiring(ctx, q.Days)
	if err != nil {
		return nil, err
	}
	soon := make([]ExpiringItem, 0, len(items))
	for _, it := range items {
		if it.ExpiryDate == nil {
			continue
		}
		soon = append(soon, ExpiringItem{Name: it.Name, Expires: it.ExpiryDate.Format("2006-01-02"), Provider: it.Provider})
	}
	if q.JSON {
		n := len(soon)
		return &Answer{OK: true, Items: soon, Days: &q.Days, Total: &n}, nil
	}
	parts := make([]string, 0, answerItems)
	for i, it := range soon {
		if i == answerItems {
			break
		}
		parts = append(parts, it.Name+"→"+it.Expires)
	}
	if len(parts) == 0 {
		return text(fmt.Sprintf("No items expiring in %d days.", q.Days)), nil
	}
	return text(strings.Join(parts, ", ")), nil
}

func (s *Service) lookup(ctx context.Context, q Query) (*Answer, error) {
	o, err := s.orders.GetByNumber(ctx, q.OrderNumber)
	if errors.Is(err, apperr.ErrNotFound) {
		return text(fmt.Sprintf("Order #%s not found.", q.OrderNumber)), nil
	}
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(strings.TrimSpace(o.Name) + " " + strings.TrimSpace(o.Surname))
	if name == "" {
		name = "Unknown"
	}
	return text(fmt.Sprintf("Order #%s: %s · %s · %s",
		o.OrderNumber, name, orDash(o.Provider), orDash(string(o.Status)))), nil
}

func (s *Service) freeform(ctx context.Context, q Query) (*Answer, error) {
	sum, err := s.orders.Summary(ctx)
	if err != nil {
		return nil, err
	}
	low, err := s.stock.LowStock(ctx, defaultThreshold)
	if err != nil {
		return nil, err
	}
	if len(low) > answerItems {
		low = low[:answerItems]
	}
	lowParts := make([]string, 0, len(low))
	for _, it := range low {
		lowParts = append(lowParts, fmt.Sprintf("%s(%d)", it.Name, it.CurrentStock))
	}

	if s.model != nil {
		counts, err := s.orders.ProviderCounts(ctx)
		if err != nil {
			return nil, err
		}
		prompt := fmt.Sprintf("Orders: total=%d, completed=%d, pending=%d, cancelled=%d. Providers: %s. Low stock (<=%d): %s.\n\nQuestion: %s",
			sum.Total, sum.Completed, sum.Pending, sum.Cancelled, formatCounts(counts), defaultThreshold,
			orNone(lowParts), q.Raw)
		answer, err := s.model.Complete(ctx, systemPrompt, prompt)
		if err == nil {
			return text(answer), nil
		}
		s.logger.Warn("model unavailable, answering locally", zap.Error(err))
	}

	return text(fmt.Sprintf("Orders total=%d, completed=%d, pending=%d. Low stock: %s",
		sum.Total, sum.Completed, sum.Pending, orNone(lowParts))), nil
}

func text(s string) *Answer { return &Answer{OK: true, Answer: s} }

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}

func orNone(parts []string) string {
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
