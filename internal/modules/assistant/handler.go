package assistant

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type AskRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, validate: validator.New(), logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/ask_ai", h.ask)
}

func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if err := h.validate.Struct(req); err != nil {
		respond(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "Ask a question."})
		return
	}
	ans, err := h.service.Ask(r.Context(), req.Prompt)
	if err != nil {
		h.logger.Error("ask failed", zap.Error(err))
		respond(w, http.StatusInternalServerError, map[string]interface{}{"ok": false, "error": "internal error"})
		return
	}
	respond(w, http.StatusOK, ans)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
