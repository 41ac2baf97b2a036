package practitioner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]Practitioner
}

func newMemoryRepo() *memoryRepo { return &memoryRepo{items: make(map[uuid.UUID]Practitioner)} }

func (m *memoryRepo) Create(_ context.Context, p *Practitioner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[p.ID] = *p
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (*Practitioner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, _ := uuid.Parse(id)
	p, ok := m.items[uid]
	if !ok {
		return nil, apperr.NotFound("Practitioner not found.")
	}
	return &p, nil
}

func (m *memoryRepo) List(_ context.Context) ([]*Practitioner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Practitioner
	for _, p := range m.items {
		p := p
		out = append(out, &p)
	}
	return out, nil
}

func (m *memoryRepo) UpdateOnboarding(_ context.Context, id string, o Onboarding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, _ := uuid.Parse(id)
	p, ok := m.items[uid]
	if !ok {
		return apperr.NotFound("Practitioner not found.")
	}
	p.Onboarding = o
	m.items[uid] = p
	return nil
}

func (m *memoryRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func (m *memoryRepo) Totals(_ context.Context) (*Totals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &Totals{Total: len(m.items)}
	for _, p := range m.items {
		if p.Onboarded {
			t.Onboarded++
		}
	}
	t.Pending = t.Total - t.Onboarded
	return t, nil
}

type countingNotifier struct{ calls int }

func (n *countingNotifier) PractitionersChanged(context.Context) { n.calls++ }

func TestSplitInterests(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"Preventative Health, Microbiome", []string{"Preventative Health", "Microbiome"}},
		{"Autoimmunity; Nutrigenomics; Lifestyle Medicine", []string{"Autoimmunity", "Nutrigenomics", "Lifestyle Medicine"}},
		{"Chronic Disease Prevention | Fitness", []string{"Chronic Disease Prevention", "Fitness"}},
		{"• Sleep\r\n- Stress\n\n", []string{"Sleep", "Stress"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitInterests(tt.in), tt.in)
	}
	assert.Equal(t, []string{"Gut Health", "Diet Planning"}, SplitInterests(JoinInterests([]string{"Gut Health", "Diet Planning"})))
}

func TestBuckets(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, zap.NewNop())
	ctx := context.Background()
	for _, p := range []*Practitioner{
		{FirstName: "Thandi", Provider: "Geneway", Onboarding: Onboarding{Onboarded: true}},
		{FirstName: "Kea", Provider: "Umvuzo Fedhealth", Onboarding: Onboarding{Onboarded: true}},
		{FirstName: "Sipho", Provider: "Optiway"},
		{FirstName: "Zanele"},
	} {
		_, err := svc.Create(ctx, p)
		require.NoError(t, err)
	}

	b, err := svc.Buckets(ctx)
	require.NoError(t, err)
	require.Len(t, b.Completed, 2)
	assert.Equal(t, "Geneway", b.Completed[0].Provider)
	assert.Equal(t, "Intelligene Fedhealth", b.Completed[1].Provider)
	require.Len(t, b.Pending, 2)
	assert.Equal(t, "Optiway", b.Pending[0].Provider)
	assert.Equal(t, "Unassigned", b.Pending[1].Provider)

	totals, err := svc.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, Totals{Total: 4, Onboarded: 2, Pending: 2}, *totals)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, zap.NewNop())
	_, err := svc.Create(context.Background(), &Practitioner{Provider: "Geneway"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestHandler_UpdateFlagsPresentMeansTrue(t *testing.T) {
	notifier := &countingNotifier{}
	svc := NewService(newMemoryRepo(), notifier, zap.NewNop())
	p, err := svc.Create(context.Background(), &Practitioner{
		FirstName: "Aisha", Provider: "Intelligene",
		Onboarding: Onboarding{Training: true, Website: true, WhatsApp: true},
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r)

	form := url.Values{"onboarded": {""}, "website": {"off"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/practitioners/"+p.ID.String()+"/update", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Practitioner flags updated.")

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Onboarding{Onboarded: true, Website: true}, list[0].Onboarding)
	assert.Equal(t, 2, notifier.calls)
}

func TestPostgres_Totals(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"total", "onboarded"}).AddRow(8, 4))

	totals, err := NewPostgresRepository(db).Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Totals{Total: 8, Onboarded: 4, Pending: 4}, *totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetScansNullableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	signed := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM practitioners WHERE id=").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "provider", "title", "first_name", "last_name", "email", "phone", "occupation", "city",
			"province", "postal_code", "registered_with_board", "interests", "notes", "signed_up",
			"onboarded", "training", "website", "whatsapp", "engagebay", "created_at",
		}).AddRow(id.String(), "Geneway", "Ms", "Thandi", "Mkhize", nil, "+27821234567", nil, "Cape Town",
			nil, nil, true, "Genetic Screening\nNutrigenomics", nil, signed,
			true, true, false, false, false, signed))

	p, err := NewPostgresRepository(db).Get(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, "Thandi Mkhize", p.FullName())
	assert.Equal(t, "", p.Email)
	assert.Equal(t, signed, *p.SignedUp)
	assert.True(t, p.Onboarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}
