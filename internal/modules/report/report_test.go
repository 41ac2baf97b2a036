package report

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/georgemunganga/life360-ops/internal/modules/order"
	"github.com/georgemunganga/life360-ops/internal/modules/practitioner"
	"github.com/georgemunganga/life360-ops/internal/modules/stock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type fakeOrders struct {
	orders []*order.Order
	err    error
}

func (f fakeOrders) Recent(context.Context, int) ([]*order.Order, error) { return f.orders, f.err }

type fakePractitioners []*practitioner.Practitioner

func (f fakePractitioners) List(context.Context) ([]*practitioner.Practitioner, error) { return f, nil }

type fakeStock []*stock.ProviderGroup

func (f fakeStock) Overview(context.Context) ([]*stock.ProviderGroup, error) { return f, nil }

func strPtr(s string) *string { return &s }

func open(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestFormatItems(t *testing.T) {
	assert.Equal(t, "", FormatItems(nil))
	assert.Equal(t, "OPT-START x2; OPT-PRO x1", FormatItems([]*order.Item{
		{SKU: "OPT-START", Qty: 2},
		{SKU: "OPT-PRO", Qty: 1},
	}))
}

func TestOrdersExport(t *testing.T) {
	orders := fakeOrders{orders: []*order.Order{{
		OrderNumber:      "ORD-20250826-1A2B",
		Provider:         "Optiway",
		Name:             "Sipho",
		Surname:          "Dlamini",
		OrderedAt:        time.Date(2025, 8, 26, 14, 10, 0, 0, time.UTC),
		Status:           order.StatusPending,
		Flags:            order.Flags{SentOut: true},
		PractitionerName: strPtr("Dr Naidoo"),
		Items:            []*order.Item{{SKU: "OPT-START", Qty: 2}, {SKU: "OPT-PRO", Qty: 1}},
	}}}
	svc := NewService(orders, fakePractitioners{}, fakeStock{})

	b, err := svc.Orders(context.Background())
	require.NoError(t, err)
	f := open(t, b)

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, orderHeaders, rows[0])
	assert.Equal(t, "Sipho Dlamini", rows[1][2])
	assert.Equal(t, "2025-08-26T14:10:00", rows[1][3])
	assert.Equal(t, "Yes", rows[1][5])
	assert.Equal(t, "No", rows[1][6])
	assert.Equal(t, "OPT-START x2; OPT-PRO x1", rows[1][12])
	assert.Equal(t, []string{"Orders"}, f.GetSheetList())
}

func TestPractitionersAndStockExport(t *testing.T) {
	signed := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	svc := NewService(fakeOrders{},
		fakePractitioners{{Provider: "Geneway", FirstName: "Thandi", LastName: "Mkhize", SignedUp: &signed,
			Onboarding: practitioner.Onboarding{Onboarded: true, WhatsApp: true}}},
		fakeStock{{Provider: "Geneway", Items: []*stock.ItemSummary{{
			Item: &stock.Item{Name: "KIT-GEN-01", CurrentStock: 4}, TotalUnits: 3, InStockUnits: 2, Batch: "Mixed (2)",
		}}}})

	b, err := svc.Practitioners(context.Background())
	require.NoError(t, err)
	rows, err := open(t, b).GetRows("Practitioners")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Geneway", "Thandi Mkhize", "", "", "2025-08-20", "Yes", "No", "No", "Yes", "No"}, rows[1])

	b, err = svc.Stock(context.Background())
	require.NoError(t, err)
	rows, err = open(t, b).GetRows("Stock")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Geneway", "KIT-GEN-01", "", "", "4", "3", "2", "Mixed (2)"}, rows[1])
}

func TestHandler(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(NewService(fakeOrders{}, fakePractitioners{}, fakeStock{}), zap.NewNop()).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/orders.xlsx", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "orders.xlsx")

	r = chi.NewRouter()
	NewHandler(NewService(fakeOrders{err: errors.New("db down")}, fakePractitioners{}, fakeStock{}), zap.NewNop()).RegisterRoutes(r)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/orders.xlsx", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
