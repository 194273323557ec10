package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/formvault/formvault/internal/storage"
)

const maxUploadBytes = 50 << 20 // 50 MB

// DocumentHandler accepts and serves uploaded documents and runs
// extraction over them.
type DocumentHandler struct {
	store  storage.Provider
	ai     Assistant
	events EventPublisher
}

// NewDocumentHandler creates a handler over the uploads store.
func NewDocumentHandler(store storage.Provider, ai Assistant, events EventPublisher) *DocumentHandler {
	return &DocumentHandler{store: store, ai: ai, events: events}
}

// List handles GET /api/documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.List()
	if err != nil {
		slog.Error("list documents failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// Upload handles POST /api/documents (multipart/form-data, field "file").
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	if !storage.AllowedName(header.Filename) {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported document type"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}
	if err := h.store.Write(header.Filename, data); err != nil {
		slog.Error("document write failed", slog.String("filename", header.Filename), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorBody("invalid filename"))
		return
	}

	if h.events != nil {
		h.events.PublishDocumentEvent(header.Filename)
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"filename": header.Filename,
		"size":     int64(len(data)),
		"url":      "/api/documents/" + header.Filename,
	})
}

// ServeFile handles GET /api/documents/{filename}.
func (h *DocumentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	data, err := h.store.Read(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
		} else {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid filename"))
		}
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

// Delete handles DELETE /api/documents/{filename}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if err := h.store.Delete(filename); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
		} else {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid filename"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Extract handles POST /api/documents/extract: runs OCR extraction over
// an inline base64 image or a previously uploaded document.
func (h *DocumentHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if h.ai == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("AI gateway not configured"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	image := req.ImageBase64
	if req.Filename != "" {
		data, err := h.store.Read(req.Filename)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				writeJSON(w, http.StatusNotFound, errorBody("document not found"))
			} else {
				writeJSON(w, http.StatusBadRequest, errorBody("invalid filename"))
			}
			return
		}
		image = "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	}

	doc, err := h.ai.ExtractDocument(r.Context(), image, req.DocumentType)
	if err != nil {
		status, msg := gatewayStatus(err)
		slog.Warn("extraction failed", slog.String("type", req.DocumentType), slog.String("error", err.Error()))
		writeJSON(w, status, errorBody(msg))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
