// Package formservice coordinates the vault, the template registry and
// the advisory dispatcher into the operations the API exposes.
package formservice

import (
	"context"
	"time"

	"github.com/formvault/formvault/internal/advisory"
	"github.com/formvault/formvault/internal/forms"
	"github.com/formvault/formvault/internal/models"
	"github.com/formvault/formvault/internal/vault"
)

// FormState is the full derived state for a selected template. It is
// recomputed on every request and never persisted.
type FormState struct {
	TemplateID         string                       `json:"template_id"`
	TemplateName       string                       `json:"template_name"`
	Fields             map[string]forms.FieldStatus `json:"fields"`
	Readiness          int                          `json:"readiness"`
	Warnings           []string                     `json:"warnings"`
	Checklist          []forms.ChecklistItem        `json:"checklist"`
	AdvisoryGeneration uint64                       `json:"advisory_generation"`
}

// CopyResult is a vault value prepared for pasting into an external form.
type CopyResult struct {
	Value   string `json:"value"`
	Name    string `json:"name,omitempty"`
	Format  string `json:"format,omitempty"`
	Caution string `json:"caution,omitempty"`
}

// Service coordinates vault storage and form reconciliation.
type Service struct {
	store    vault.Store
	registry *forms.Registry
	advisor  *advisory.Dispatcher
}

// NewService creates a new form service.
func NewService(store vault.Store, registry *forms.Registry, advisor *advisory.Dispatcher) *Service {
	return &Service{store: store, registry: registry, advisor: advisor}
}

// Autofill reconciles a template against the user's vault and kicks off
// the advisory call for the fresh selection. The returned state carries
// the immediate local warnings; the merged set is available from
// Warnings once advisory.ready fires.
func (s *Service) Autofill(_ context.Context, userID, templateID string) (*FormState, error) {
	t, err := s.registry.Template(templateID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	statuses := forms.AutoFill(t, items)
	local := forms.LocalWarnings(s.registry, t, statuses)
	gen := s.advisor.Submit(userID, t, statuses, local)

	return &FormState{
		TemplateID:         t.ID,
		TemplateName:       t.Name,
		Fields:             statuses,
		Readiness:          forms.ComputeReadiness(t, statuses),
		Warnings:           nonNilSlice(local),
		Checklist:          forms.Checklist(t, statuses),
		AdvisoryGeneration: gen,
	}, nil
}

// ValidateField revalidates a manually entered value for one field.
func (s *Service) ValidateField(_ context.Context, templateID, fieldID, value string) (forms.FieldStatus, error) {
	t, err := s.registry.Template(templateID)
	if err != nil {
		return forms.FieldStatus{}, err
	}
	return forms.EditField(t, fieldID, value)
}

// Warnings returns the latest warning list for a selection: local
// warnings right after Autofill, the advisory-merged set once ready.
func (s *Service) Warnings(_ context.Context, userID, templateID string) ([]string, error) {
	if _, err := s.registry.Template(templateID); err != nil {
		return nil, err
	}
	return nonNilSlice(s.advisor.Warnings(userID, templateID)), nil
}

// ImportExtracted upserts OCR-extracted fields into the user's vault.
// Fields flagged for verification land unverified; the rest are marked
// verified as of now. Empty values are skipped rather than erasing an
// existing vault entry.
func (s *Service) ImportExtracted(_ context.Context, userID string, fields []models.ExtractedField) ([]models.VaultItem, error) {
	now := time.Now()
	out := make([]models.VaultItem, 0, len(fields))
	for _, f := range fields {
		if f.FieldValue == "" {
			continue
		}
		item := models.VaultItem{
			UserID:     userID,
			Category:   f.Category,
			FieldName:  f.FieldName,
			FieldValue: f.FieldValue,
			IsVerified: !f.NeedsVerification,
		}
		if item.IsVerified {
			t := now
			item.VerificationDate = &t
		}
		saved, err := s.store.Upsert(item)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, nil
}

// CopyValue fetches a vault item and prepares its value for pasting,
// applying the field's copy-hint transform when one is registered.
func (s *Service) CopyValue(_ context.Context, userID, itemID string) (*CopyResult, error) {
	item, err := s.store.Get(userID, itemID)
	if err != nil {
		return nil, err
	}
	res := &CopyResult{Value: forms.CopyValue(item.FieldName, item.FieldValue)}
	if h := forms.Hint(item.FieldName); h != nil {
		res.Name = h.Name
		res.Format = h.Format
		res.Caution = h.Caution
	}
	return res, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
