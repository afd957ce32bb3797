// Package server exposes document upload and verification over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Lllllllleong/documentverification/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const maxUploadBytes = 10 << 20

// Service is the document pipeline behind the routes.
type Service interface {
	Upload(ctx context.Context, kind models.Kind, upload *models.Upload) (*models.UploadResponse, error)
	Verify(ctx context.Context, kind models.Kind, number string) (*models.VerifyResponse, error)
}

type Handler struct {
	service Service
}

func New(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// NewRouter returns a router with CORS for allowedOrigins and the handler's routes.
// Trailing slashes are optional.
func NewRouter(service Service, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	New(service).Attach(r)
	return r
}

func (h *Handler) Attach(r chi.Router) {
	for _, kind := range models.Kinds {
		r.Post(fmt.Sprintf("/api/upload-%s", kind), h.handleUpload(kind))
		r.Get(fmt.Sprintf("/api/verify-%s/{number}", kind), h.handleVerify(kind))
	}
}

func (h *Handler) handleUpload(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, cleanup, err := receiveFile(w, r)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		defer cleanup()

		resp, err := h.service.Upload(r.Context(), kind, upload)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJson(w, resp)
	}
}

func (h *Handler) handleVerify(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.service.Verify(r.Context(), kind, chi.URLParam(r, "number"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJson(w, resp)
	}
}

// receiveFile copies the multipart "file" field to a temp dir. A request
// without that field yields a nil upload, not an error.
func receiveFile(w http.ResponseWriter, r *http.Request) (*models.Upload, func(), error) {
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, noop, err
		}
		slog.Warn("Request has no readable multipart body.", "error", err)
		return nil, noop, nil
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	defer file.Close()

	tempDir, err := os.MkdirTemp("", "document-upload-*")
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tempDir) }

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	path := filepath.Join(tempDir, name)

	dst, err := os.Create(path)
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("failed to create temp file: %w", err)
	}
	_, err = io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	return &models.Upload{Filename: header.Filename, Path: path}, cleanup, nil
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	slog.Error("Request failed.", "status", code, "error", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(models.UploadResponse{
		Status:  models.StatusError,
		Message: http.StatusText(code),
	})
}
