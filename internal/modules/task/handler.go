package task

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
	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Get("/", h.list)               // GET    /api/v1/tasks
		r.Post("/", h.add)               // POST   /api/v1/tasks
		r.Post("/{id}/update", h.update) // POST   /api/v1/tasks/{id}/update
		r.Delete("/{id}", h.delete)      // DELETE /api/v1/tasks/{id}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Add(r.Context(), readForm(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{"message": "Task added.", "task": t})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), readForm(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"message": "Task updated.", "task": t})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "Task deleted."})
}

func readForm(r *http.Request) TaskRequest {
	return TaskRequest{
		Title:    r.FormValue("title"),
		Provider: r.FormValue("provider"),
		Assignee: r.FormValue("assignee"),
		DueDate:  r.FormValue("due_date"),
		Status:   r.FormValue("status"),
		Notes:    r.FormValue("notes"),
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("task request failed", zap.Error(err))
	}
	respond(w, status, map[string]string{"error": apperr.Message(err)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
