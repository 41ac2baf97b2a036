package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/georgemunganga/life360-ops/internal/modules/user"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memoryUsers struct {
	mu    sync.RWMutex
	users map[string]*user.User
}

func (m *memoryUsers) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Email] = u
	return nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("Operator not found.")
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, apperr.NotFound("Operator not found.")
}

func newTestAuth(t *testing.T) Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &memoryUsers{users: map[string]*user.User{
		"naledi@life360.test": {
			ID: uuid.New(), Email: "naledi@life360.test", PasswordHash: string(hash),
			FirstName: "Naledi", LastName: "Khoza",
		},
	}}
	return NewService(repo, "test-secret")
}

func TestLogin_RoundTrip(t *testing.T) {
	svc := newTestAuth(t)

	token, err := svc.Login(context.Background(), " Naledi@Life360.test ", "s3cret-pass")
	require.NoError(t, err)

	op, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "Naledi Khoza", op.Name)
	assert.Equal(t, "naledi@life360.test", op.Email)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.Login(context.Background(), "naledi@life360.test", "wrong")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Login(context.Background(), "nobody@life360.test", "s3cret-pass")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestParseToken_RejectsOtherSecret(t *testing.T) {
	svc := newTestAuth(t)
	token, err := svc.Login(context.Background(), "naledi@life360.test", "s3cret-pass")
	require.NoError(t, err)

	other := NewService(&memoryUsers{users: map[string]*user.User{}}, "another-secret")
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func newProtectedRouter(svc Service, required bool) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware(svc, required))
	NewHandler(svc).RegisterRoutes(r)
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	return r
}

func TestMiddleware(t *testing.T) {
	svc := newTestAuth(t)
	token, err := svc.Login(context.Background(), "naledi@life360.test", "s3cret-pass")
	require.NoError(t, err)

	tests := []struct {
		name     string
		required bool
		header   string
		path     string
		want     int
	}{
		{"optional without token", false, "", "/ping", http.StatusNoContent},
		{"required without token", true, "", "/ping", http.StatusUnauthorized},
		{"bad token", false, "Bearer nope", "/ping", http.StatusUnauthorized},
		{"valid token", true, "Bearer " + token, "/api/v1/auth/me", http.StatusOK},
		{"me without token", false, "", "/api/v1/auth/me", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			newProtectedRouter(svc, tt.required).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandler_Login(t *testing.T) {
	svc := newTestAuth(t)
	r := newProtectedRouter(svc, false)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"naledi@life360.test","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"not-an-email"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"naledi@life360.test","password":"s3cret-pass"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "token")
}

func TestMiddleware_OperatorRoutesRequireToken(t *testing.T) {
	repo := &memoryUsers{users: map[string]*user.User{}}
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["naledi@life360.test"] = &user.User{ID: uuid.New(), Email: "naledi@life360.test", PasswordHash: string(hash)}
	svc := NewService(repo, "test-secret")

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(Middleware(svc, true))
		user.NewHandler(user.NewService(repo, zap.NewNop())).RegisterRoutes(r)
	})

	body := `{"email":"intruder@life360.test","password":"long-enough"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/register", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, repo.users, "intruder@life360.test")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/"+repo.users["naledi@life360.test"].ID.String(), nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := svc.Login(context.Background(), "naledi@life360.test", "s3cret-pass")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, repo.users, "intruder@life360.test")
}
