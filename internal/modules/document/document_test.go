package document

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryRepo struct {
	mu   sync.Mutex
	docs []*Document
}

func (m *memoryRepo) Create(_ context.Context, d *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.docs = append([]*Document{&cp}, m.docs...)
	return nil
}

func (m *memoryRepo) List(_ context.Context) ([]*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Document
	for _, d := range m.docs {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func newTestService(t *testing.T) (Service, *memoryRepo, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)
	repo := &memoryRepo{}
	return NewService(repo, store, zap.NewNop()), repo, root
}

func TestSecureFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":             "report.pdf",
		"My Lab Results (1).pdf": "My_Lab_Results_1.pdf",
		"../../etc/passwd":       "etc_passwd",
		"..\\win\\file.txt":      "win_file.txt",
		"naïve.csv":              "nave.csv",
	}
	for in, want := range tests {
		assert.Equal(t, want, SecureFilename(in), in)
	}
}

func TestUpload(t *testing.T) {
	svc, repo, root := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "Geneway", "", strings.NewReader("x"))
	assert.Equal(t, "Choose a file.", apperr.Message(err))

	_, err = svc.Upload(ctx, "Geneway", "script.exe", strings.NewReader("x"))
	assert.Equal(t, "File type not allowed.", apperr.Message(err))

	d, err := svc.Upload(ctx, "Umvuzo Fedhealth", "Price List.XLSX", strings.NewReader("sheet"))
	require.NoError(t, err)
	assert.Equal(t, "Intelligene Fedhealth", d.Provider)
	assert.Regexp(t, `^[0-9a-f]{32}_Price_List\.XLSX$`, d.StoredName)
	assert.Len(t, repo.docs, 1)

	b, err := os.ReadFile(filepath.Join(root, "Intelligene_Fedhealth", d.StoredName))
	require.NoError(t, err)
	assert.Equal(t, "sheet", string(b))

	d, err = svc.Upload(ctx, "", "notes.txt", strings.NewReader("n"))
	require.NoError(t, err)
	assert.Equal(t, "Unassigned", d.Provider)
}

func TestOpen_FindsFilesInLegacyDirectory(t *testing.T) {
	svc, _, root := newTestService(t)
	ctx := context.Background()

	legacyDir := filepath.Join(root, "Umvuzo_Fedhealth")
	require.NoError(t, os.MkdirAll(legacyDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(legacyDir, "abc_contract.pdf"), []byte("old"), 0o644))

	for _, name := range []string{"Intelligene Fedhealth", "Umvuzo Fedhealth"} {
		rc, err := svc.Open(ctx, name, "abc_contract.pdf")
		require.NoError(t, err, name)
		b, _ := io.ReadAll(rc)
		rc.Close()
		assert.Equal(t, "old", string(b))
	}

	_, err := svc.Open(ctx, "Geneway", "abc_contract.pdf")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Open(ctx, "Umvuzo Fedhealth", "../Umvuzo_Fedhealth/abc_contract.pdf")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestByProvider(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Upload(ctx, "Geneway", "a.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = svc.Upload(ctx, "", "b.pdf", strings.NewReader("b"))
	require.NoError(t, err)
	repo.docs = append(repo.docs, &Document{Provider: "Umvuzo Fedhealth", Filename: "c.pdf", StoredName: "c.pdf"})

	groups, err := svc.ByProvider(ctx)
	require.NoError(t, err)

	byName := make(map[string]int)
	for _, g := range groups {
		byName[g.Provider] = len(g.Documents)
	}
	assert.Equal(t, 1, byName["Geneway"])
	assert.Equal(t, 1, byName["Intelligene Fedhealth"])
	assert.Equal(t, 0, byName["Optiway"])
	assert.Equal(t, "Unassigned", groups[len(groups)-1].Provider)
	assert.Equal(t, 1, byName["Unassigned"])
}

func TestHandler_UploadAndDownload(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("provider", "Geneway"))
	fw, err := mw.CreateFormFile("file", "consent.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "File uploaded.")

	groups, err := svc.ByProvider(context.Background())
	require.NoError(t, err)
	var stored string
	for _, g := range groups {
		if g.Provider == "Geneway" {
			stored = g.Documents[0].StoredName
		}
	}
	require.NotEmpty(t, stored)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents/Geneway/"+stored, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_RejectsProviderOutsideRoot(t *testing.T) {
	svc, repo, root := newTestService(t)
	ctx := context.Background()

	for _, prov := range []string{"../escaped", "..", "a/b", `a\b`, "/etc"} {
		_, err := svc.Upload(ctx, prov, "a.txt", strings.NewReader("x"))
		assert.ErrorIs(t, err, apperr.ErrValidation, prov)
	}
	assert.Empty(t, repo.docs)
	_, err := os.Stat(filepath.Join(filepath.Dir(root), "escaped"))
	assert.True(t, os.IsNotExist(err))
}

func TestOpen_StaysInsideRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "uploads")
	store, err := NewLocalStore(root)
	require.NoError(t, err)
	svc := NewService(&memoryRepo{}, store, zap.NewNop())
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("TOP SECRET"), 0o644))

	_, err = svc.Open(context.Background(), "..", "secret.txt")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	r := chi.NewRouter()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents/../secret.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "TOP SECRET")
}

func TestLocalStore_RefusesEscapingPaths(t *testing.T) {
	parent := t.TempDir()
	store, err := NewLocalStore(filepath.Join(parent, "uploads"))
	require.NoError(t, err)
	ctx := context.Background()

	err = store.Save(ctx, "..", "out.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrOutsideRoot)
	_, err = os.Stat(filepath.Join(parent, "out.txt"))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Open(ctx, "../..", "etc")
	assert.ErrorIs(t, err, ErrNotExist)

	require.NoError(t, store.Save(ctx, "Geneway", "in.txt", strings.NewReader("ok")))
	rc, err := store.Open(ctx, "Geneway", "in.txt")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "ok", string(b))
}
