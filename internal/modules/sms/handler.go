package sms

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Handler struct {
	client   *Client
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandler(client *Client, logger *zap.Logger) *Handler {
	return &Handler{client: client, validate: validator.New(), logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sms/send", h.send)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	// A malformed body is treated like an empty one.
	_ = json.NewDecoder(r.Body).Decode(&req)
	req.Destination = strings.TrimSpace(req.Destination)
	req.Message = strings.TrimSpace(req.Message)
	if err := h.validate.Struct(req); err != nil {
		respond(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "Missing destination or message"})
		return
	}

	res, err := h.client.Send(r.Context(), req)
	switch {
	case errors.Is(err, ErrNotConfigured):
		respond(w, http.StatusServiceUnavailable, map[string]interface{}{"ok": false, "error": "SMS gateway not configured"})
		return
	case errors.Is(err, ErrTransport):
		respond(w, http.StatusBadGateway, map[string]interface{}{"ok": false, "error": err.Error()})
		return
	case err != nil:
		status := apperr.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("sms send failed", zap.Error(err))
		}
		respond(w, status, map[string]interface{}{"ok": false, "error": apperr.Message(err)})
		return
	}

	status := res.Status
	if status < 100 {
		status = http.StatusBadGateway
	}
	respond(w, status, map[string]interface{}{
		"ok":       res.Status == http.StatusOK,
		"status":   res.Status,
		"response": res.Body,
	})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
