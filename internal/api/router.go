package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formvault/formvault/internal/forms"
	"github.com/formvault/formvault/internal/formservice"
	"github.com/formvault/formvault/internal/storage"
	"github.com/formvault/formvault/internal/vault"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// ai and events may be nil; sseHandler, if non-nil, is mounted at
// GET /events inside the auth group.
func NewRouter(svc *formservice.Service, registry *forms.Registry, store vault.Store, docs storage.Provider, ai Assistant, events EventPublisher, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, registry, store, ai, events)
	dh := NewDocumentHandler(docs, ai, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))
	r.Use(UserScopeMiddleware)

	// Templates and reconciliation.
	r.Get("/templates", h.ListTemplates)
	r.Get("/templates/{id}", h.GetTemplate)
	r.Post("/templates/{id}/autofill", h.Autofill)
	r.Get("/templates/{id}/warnings", h.Warnings)
	r.Post("/templates/{id}/fields/{fieldId}/validate", h.ValidateField)

	// Vault.
	r.Get("/vault", h.ListVault)
	r.Get("/vault/stats", h.Stats)
	r.Post("/vault/items", h.UpsertItem)
	r.Delete("/vault/items/{id}", h.DeleteItem)
	r.Post("/vault/items/{id}/copy", h.Copy)
	r.Post("/vault/import", h.Import)

	// Documents.
	r.Get("/documents", dh.List)
	r.Post("/documents", dh.Upload)
	r.Post("/documents/extract", dh.Extract)
	r.Get("/documents/{filename}", dh.ServeFile)
	r.Delete("/documents/{filename}", dh.Delete)

	// Assistant.
	r.Post("/assistant/chat", h.Chat)
	r.Post("/translate", h.Translate)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
