package stock

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*chi.Mux, Service) {
	svc, _ := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r)
	return r, svc
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandler_CreateItemRequiresName(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := postForm(r, "/api/v1/stock/items", url.Values{"provider": {"Geneway"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name is required.", decode(t, rec)["error"])

	rec = postForm(r, "/api/v1/stock/items", url.Values{"name": {"Kit"}, "provider": {"Geneway"}})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Stock item added.", decode(t, rec)["message"])
}

func TestHandler_UnitLifecycle(t *testing.T) {
	r, svc := newTestRouter(t)
	it := createItem(t, svc, "Kit", "Geneway")
	base := "/api/v1/stock/items/" + it.ID.String()

	rec := postForm(r, base+"/units", url.Values{"barcode": {"BC-9"}})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Added barcode BC-9.", decode(t, rec)["message"])

	rec = postForm(r, base+"/units", url.Values{"barcode": {"BC-9"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This barcode already exists.", decode(t, rec)["error"])

	rec = postForm(r, base+"/units/bulk", url.Values{"barcodes": {"BC-9\nBC-10\nBC-11,L2"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Added 2 barcodes.", decode(t, rec)["message"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, base, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["units"], 3)
	assert.Equal(t, "L2", body["batch"])
}

func TestHandler_UnknownItem(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stock/items/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
