package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/life360-ops/internal/modules/order"
	"github.com/georgemunganga/life360-ops/internal/modules/practitioner"
	"github.com/georgemunganga/life360-ops/internal/modules/stock"
)

type OrderSource interface {
	Recent(ctx context.Context, limit int) ([]*order.Order, error)
}

type PractitionerSource interface {
	List(ctx context.Context) ([]*practitioner.Practitioner, error)
}

type StockSource interface {
	Overview(ctx context.Context) ([]*stock.ProviderGroup, error)
}

// Service renders spreadsheet exports.
type Service interface {
	Orders(ctx context.Context) ([]byte, error)
	Practitioners(ctx context.Context) ([]byte, error)
	Stock(ctx context.Context) ([]byte, error)
}

type service struct {
	orders        OrderSource
	practitioners PractitionerSource
	stock         StockSource
}

func NewService(orders OrderSource, practitioners PractitionerSource, stock StockSource) Service {
	return &service{orders: orders, practitioners: practitioners, stock: stock}
}

var orderHeaders = []string{
	"Order #", "Provider", "Name", "OrderedAt", "Status", "SentOut", "ReceivedBack", "KitRegistered",
	"ResultsSent", "Paid", "Invoiced", "PractitionerName", "Items", "Notes",
}

func (s *service) Orders(ctx context.Context) ([]byte, error) {
	orders, err := s.orders.Recent(ctx, 0)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []interface{}{
			o.OrderNumber,
			o.Provider,
			strings.TrimSpace(o.Name + " " + o.Surname),
			o.OrderedAt.Format("2006-01-02T15:04:05"),
			string(o.Status),
			yesNo(o.SentOut),
			yesNo(o.ReceivedBack),
			yesNo(o.KitRegistered),
			yesNo(o.ResultsSent),
			yesNo(o.Paid),
			yesNo(o.Invoiced),
			deref(o.PractitionerName),
			FormatItems(o.Items),
			deref(o.Notes),
		})
	}
	return Build(Sheet{Name: "Orders", Headers: orderHeaders, Rows: rows})
}

var practitionerHeaders = []string{
	"Provider", "Name", "Email", "Phone", "SignedUp", "Onboarded", "Training", "Website", "WhatsApp",
	"EngageBay", "Notes",
}

func (s *service) Practitioners(ctx context.Context) ([]byte, error) {
	list, err := s.practitioners.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(list))
	for _, p := range list {
		rows = append(rows, []interface{}{
			p.Provider,
			p.FullName(),
			p.Email,
			p.Phone,
			formatDate(p.SignedUp),
			yesNo(p.Onboarded),
			yesNo(p.Training),
			yesNo(p.Website),
			yesNo(p.WhatsApp),
			yesNo(p.EngageBay),
			p.Notes,
		})
	}
	return Build(Sheet{Name: "Practitioners", Headers: practitionerHeaders, Rows: rows})
}

var stockHeaders = []string{
	"Provider", "Item", "ExpiryDate", "ReceivedDate", "CurrentStock", "Units", "InStock", "Batch",
}

func (s *service) Stock(ctx context.Context) ([]byte, error) {
	groups, err := s.stock.Overview(ctx)
	if err != nil {
		return nil, err
	}
	var rows [][]interface{}
	for _, g := range groups {
		for _, it := range g.Items {
			rows = append(rows, []interface{}{
				g.Provider,
				it.Name,
				formatDate(it.ExpiryDate),
				formatDate(it.ReceivedDate),
				it.CurrentStock,
				it.TotalUnits,
				it.InStockUnits,
				it.Batch,
			})
		}
	}
	return Build(Sheet{Name: "Stock", Headers: stockHeaders, Rows: rows})
}

// FormatItems renders line items as "SKU xN" joined by "; ".
func FormatItems(items []*order.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.SKU, it.Qty))
	}
	return strings.Join(parts, "; ")
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
