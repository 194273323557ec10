package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formvault/formvault/internal/apperr"
	"github.com/formvault/formvault/internal/forms"
	"github.com/formvault/formvault/internal/formservice"
	"github.com/formvault/formvault/internal/models"
	"github.com/formvault/formvault/internal/vault"
)

// Assistant is the AI gateway surface the API depends on. It is nil
// when no gateway key is configured; the affected endpoints then return
// 503.
type Assistant interface {
	Chat(ctx context.Context, message, contextNote string, vaultItems []models.VaultItem) (string, error)
	Translate(ctx context.Context, text, targetLanguage, sourceLanguage string) (string, error)
	ExtractDocument(ctx context.Context, imageBase64, documentType string) (*models.ExtractedDocument, error)
}

// EventPublisher receives change notifications for the SSE stream.
type EventPublisher interface {
	PublishVaultEvent(userID string)
	PublishDocumentEvent(filename string)
}

// Handler holds API route handlers.
type Handler struct {
	forms    *formservice.Service
	registry *forms.Registry
	store    vault.Store
	ai       Assistant
	events   EventPublisher
}

// NewHandler creates a new Handler. ai may be nil (gateway not
// configured) and events may be nil (no SSE broker).
func NewHandler(svc *formservice.Service, registry *forms.Registry, store vault.Store, ai Assistant, events EventPublisher) *Handler {
	return &Handler{forms: svc, registry: registry, store: store, ai: ai, events: events}
}

func (h *Handler) publishVault(userID string) {
	if h.events != nil {
		h.events.PublishVaultEvent(userID)
	}
}

// gatewayStatus maps AI gateway failures onto response codes. Rate and
// credit exhaustion pass through so the client can message the user.
func gatewayStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit exceeded, try again shortly"
	case errors.Is(err, apperr.ErrCreditsExhausted):
		return http.StatusPaymentRequired, "AI credits exhausted"
	default:
		return http.StatusBadGateway, "AI gateway unavailable"
	}
}

// ListTemplates handles GET /api/templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	out := make([]TemplateSummary, 0, len(h.registry.Templates()))
	for _, t := range h.registry.Templates() {
		out = append(out, TemplateSummary{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			FieldCount:  len(t.Fields),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": out})
}

// GetTemplate handles GET /api/templates/{id}.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.registry.Template(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("template not found"))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Autofill handles POST /api/templates/{id}/autofill.
func (h *Handler) Autofill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.forms.Autofill(r.Context(), UserID(r), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("template not found"))
		} else {
			slog.Error("autofill failed", slog.String("template", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// ValidateField handles POST /api/templates/{id}/fields/{fieldId}/validate.
func (h *Handler) ValidateField(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "id")
	fieldID := chi.URLParam(r, "fieldId")

	var req ValidateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	fs, err := h.forms.ValidateField(r.Context(), templateID, fieldID, req.Value)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("unknown template or field"))
		} else {
			slog.Error("validate field failed", slog.String("field", fieldID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, fs)
}

// Warnings handles GET /api/templates/{id}/warnings: the latest
// (possibly advisory-merged) warning list for the caller's selection.
func (h *Handler) Warnings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	warnings, err := h.forms.Warnings(r.Context(), UserID(r), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("template not found"))
		} else {
			slog.Error("warnings failed", slog.String("template", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"warnings": warnings})
}

// ListVault handles GET /api/vault with an optional ?q= substring filter.
func (h *Handler) ListVault(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r)
	q := r.URL.Query().Get("q")

	var (
		items []models.VaultItem
		err   error
	)
	if q != "" {
		items, err = h.store.Search(userID, q)
	} else {
		items, err = h.store.ListByUser(userID)
	}
	if err != nil {
		slog.Error("list vault failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []models.VaultItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// UpsertItem handles POST /api/vault/items.
func (h *Handler) UpsertItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req UpsertItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	userID := UserID(r)
	saved, err := h.store.Upsert(models.VaultItem{
		UserID:     userID,
		Category:   req.Category,
		FieldName:  req.FieldName,
		FieldValue: req.FieldValue,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		slog.Error("upsert vault item failed", slog.String("field", req.FieldName), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publishVault(userID)
	writeJSON(w, http.StatusCreated, saved)
}

// DeleteItem handles DELETE /api/vault/items/{id}.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r)
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(userID, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete vault item failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publishVault(userID)
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/vault/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(UserID(r))
	if err != nil {
		slog.Error("vault stats failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Import handles POST /api/vault/import: bulk upsert of extracted fields.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	userID := UserID(r)
	saved, err := h.forms.ImportExtracted(r.Context(), userID, req.Fields)
	if err != nil {
		slog.Error("vault import failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publishVault(userID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"imported": len(saved),
		"items":    saved,
	})
}

// Copy handles POST /api/vault/items/{id}/copy: the value prepared for
// pasting into an external form, with its format hint.
func (h *Handler) Copy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.forms.CopyValue(r.Context(), UserID(r), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("copy failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Chat handles POST /api/assistant/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.ai == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("AI gateway not configured"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	userID := UserID(r)
	items, err := h.store.ListByUser(userID)
	if err != nil {
		slog.Error("chat vault load failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	reply, err := h.ai.Chat(r.Context(), req.Message, req.Context, items)
	if err != nil {
		status, msg := gatewayStatus(err)
		slog.Warn("assistant chat failed", slog.String("error", err.Error()))
		writeJSON(w, status, errorBody(msg))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": reply})
}

// Translate handles POST /api/translate.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	if h.ai == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("AI gateway not configured"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	out, err := h.ai.Translate(r.Context(), req.Text, req.TargetLanguage, req.SourceLanguage)
	if err != nil {
		status, msg := gatewayStatus(err)
		slog.Warn("translate failed", slog.String("error", err.Error()))
		writeJSON(w, status, errorBody(msg))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"translatedText": out,
		"targetLanguage": req.TargetLanguage,
	})
}
