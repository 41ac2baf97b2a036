package stock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes stock HTTP endpoints.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/stock", func(r chi.Router) {
		r.Get("/", h.overview)                           // GET    /api/v1/stock
		r.Post("/items", h.createItem)                   // POST   /api/v1/stock/items
		r.Get("/items/{id}", h.getItem)                  // GET    /api/v1/stock/items/{id}
		r.Post("/items/{id}/units", h.addUnit)           // POST   /api/v1/stock/items/{id}/units
		r.Post("/items/{id}/units/bulk", h.addUnitsBulk) // POST   /api/v1/stock/items/{id}/units/bulk
		r.Delete("/units/{id}", h.deleteUnit)            // DELETE /api/v1/stock/units/{id}
		r.Get("/low", h.lowStock)                        // GET    /api/v1/stock/low?threshold=2
		r.Get("/expiring", h.expiring)                   // GET    /api/v1/stock/expiring?days=30
	})
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.Overview(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"providers": groups})
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	req := CreateItemRequest{
		Name:         r.FormValue("name"),
		Provider:     r.FormValue("provider"),
		ExpiryDate:   r.FormValue("expiry_date"),
		ReceivedDate: r.FormValue("received_date"),
		CurrentStock: r.FormValue("current_stock"),
	}
	it, err := h.service.CreateItem(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{"message": "Stock item added.", "item": it})
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	it, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	units, err := h.service.ListUnits(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	batch, err := h.service.BatchSummary(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"item": it, "units": units, "batch": batch})
}

func (h *Handler) addUnit(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.RegisterUnit(r.Context(), chi.URLParam(r, "id"),
		r.FormValue("barcode"), r.FormValue("batch_number"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("Added barcode %s.", u.Barcode),
		"unit":    u,
	})
}

func (h *Handler) addUnitsBulk(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.RegisterUnitsBulk(r.Context(), chi.URLParam(r, "id"),
		r.FormValue("barcodes"), r.FormValue("batch_number"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Added %d barcodes.", n),
		"added":   n,
	})
}

func (h *Handler) deleteUnit(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.DeleteUnit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"message": "Unit deleted.", "item_id": u.ItemID})
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold, err := strconv.Atoi(r.URL.Query().Get("threshold"))
	if err != nil {
		threshold = defaultLowStockThreshold
	}
	items, err := h.service.LowStock(r.Context(), threshold)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"items": items, "threshold": threshold})
}

func (h *Handler) expiring(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		days = defaultExpiringDays
	}
	items, err := h.service.Expiring(r.Context(), days)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"items": items, "days": days})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("stock request failed", zap.Error(err))
	}
	respond(w, status, map[string]string{"error": apperr.Message(err)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
