package order

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/georgemunganga/life360-ops/internal/forms"
	"github.com/georgemunganga/life360-ops/internal/modules/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes order HTTP endpoints.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/", h.board)                                      // GET    /api/v1/orders
		r.Post("/", h.createOrder)                               // POST   /api/v1/orders
		r.Get("/summary", h.summary)                             // GET    /api/v1/orders/summary
		r.Get("/number/{number}", h.getOrderByNumber)            // GET    /api/v1/orders/number/{number}
		r.Get("/{id}", h.getOrder)                               // GET    /api/v1/orders/{id}
		r.Post("/{id}/update", h.updateOrder)                    // POST   /api/v1/orders/{id}/update
		r.Delete("/{id}", h.deleteOrder)                         // DELETE /api/v1/orders/{id}
		r.Post("/{id}/call-logs", h.addCallLog)                  // POST   /api/v1/orders/{id}/call-logs
		r.Post("/{id}/assign", h.assignUnit)                     // POST   /api/v1/orders/{id}/assign
		r.Post("/{id}/unassign/{assignment_id}", h.unassignUnit) // POST  /api/v1/orders/{id}/unassign/{assignment_id}
	})
}

func (h *Handler) board(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Board(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, b)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, s)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	req := CreateOrderRequest{
		Provider:         r.FormValue("provider"),
		Name:             r.FormValue("name"),
		Surname:          r.FormValue("surname"),
		PractitionerName: r.FormValue("practitioner_name"),
		Notes:            r.FormValue("notes"),
		OrderedAt:        r.FormValue("ordered_at"),
		Status:           r.FormValue("status"),
	}
	for i := 1; i <= maxItemSlots; i++ {
		req.Items = append(req.Items, ItemInput{
			SKU: r.FormValue("item_sku_" + strconv.Itoa(i)),
			Qty: r.FormValue("item_qty_" + strconv.Itoa(i)),
		})
	}
	o, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("Order #%s created.", o.OrderNumber),
		"order":   o,
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) getOrderByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	req := UpdateOrderRequest{
		PractitionerName: r.FormValue("practitioner_name"),
		Status:           r.FormValue("status"),
		Notes:            r.FormValue("notes"),
		EmailStatus:      r.FormValue("email_status"),
		Flags: Flags{
			SentOut:       forms.Flag(r.FormValue("sent_out")),
			ReceivedBack:  forms.Flag(r.FormValue("received_back")),
			KitRegistered: forms.Flag(r.FormValue("kit_registered")),
			ResultsSent:   forms.Flag(r.FormValue("results_sent")),
			Paid:          forms.Flag(r.FormValue("paid")),
			Invoiced:      forms.Flag(r.FormValue("invoiced")),
		},
	}
	o, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Order #%s updated.", o.OrderNumber),
		"order":   o,
		"bucket":  BucketOf(o),
	})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "Order deleted."})
}

func (h *Handler) addCallLog(w http.ResponseWriter, r *http.Request) {
	req := CallLogRequest{
		Author:  r.FormValue("author"),
		Summary: r.FormValue("summary"),
		Outcome: r.FormValue("outcome"),
	}
	if req.Author == "" {
		if op, ok := auth.OperatorFromContext(r.Context()); ok {
			req.Author = op.Name
		}
	}
	cl, err := h.service.AddCallLog(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{"message": "Call log added.", "call_log": cl})
}

func (h *Handler) assignUnit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	au, err := h.service.Assign(r.Context(), id, r.FormValue("barcode"))
	if err != nil {
		h.fail(w, err)
		return
	}
	number := id
	if o, err := h.service.Get(r.Context(), id); err == nil {
		number = o.OrderNumber
	}
	respond(w, http.StatusCreated, map[string]interface{}{
		"message":    fmt.Sprintf("Assigned %s to order #%s.", au.Barcode, number),
		"assignment": au,
	})
}

func (h *Handler) unassignUnit(w http.ResponseWriter, r *http.Request) {
	au, err := h.service.Unassign(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "assignment_id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"message": "Unassigned barcode.", "assignment": au})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("order request failed", zap.Error(err))
	}
	respond(w, status, map[string]string{"error": apperr.Message(err)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
