package document

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxUploadBytes = 32 << 20

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/documents", func(r chi.Router) {
		r.Get("/", h.list)                             // GET  /api/v1/documents
		r.Post("/", h.upload)                          // POST /api/v1/documents (multipart)
		r.Get("/{provider}/{stored_name}", h.download) // GET  /api/v1/documents/{provider}/{stored_name}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ByProvider(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"providers": groups})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "Choose a file."})
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "Choose a file."})
		return
	}
	defer f.Close()

	d, err := h.service.Upload(r.Context(), r.FormValue("provider"), hdr.Filename, f)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{"message": "File uploaded.", "document": d})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "stored_name")
	rc, err := h.service.Open(r.Context(), chi.URLParam(r, "provider"), name)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer rc.Close()

	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("download interrupted", zap.String("stored_name", name), zap.Error(err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("document request failed", zap.Error(err))
	}
	respond(w, status, map[string]string{"error": apperr.Message(err)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
