package practitioner

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/practitioners", func(r chi.Router) {
		r.Get("/", h.buckets)            // GET  /api/v1/practitioners
		r.Post("/{id}/update", h.update) // POST /api/v1/practitioners/{id}/update
	})
}

func (h *Handler) buckets(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Buckets(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, b)
}

// update reads checkbox semantics: a flag is set iff its field is present.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "Invalid form."})
		return
	}
	present := func(k string) bool {
		_, ok := r.PostForm[k]
		return ok
	}
	o := Onboarding{
		Onboarded: present("onboarded"),
		Training:  present("training"),
		Website:   present("website"),
		WhatsApp:  present("whatsapp"),
		EngageBay: present("engagebay"),
	}
	p, err := h.service.UpdateOnboarding(r.Context(), chi.URLParam(r, "id"), o)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"message": "Practitioner flags updated.", "practitioner": p})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("practitioner request failed", zap.Error(err))
	}
	respond(w, status, map[string]string{"error": apperr.Message(err)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
