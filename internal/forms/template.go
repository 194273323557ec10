// Package forms implements the vault-to-form reconciliation engine:
// template registry, alias matching, value transforms, validation and
// readiness scoring.
package forms

import (
	"regexp"

	"github.com/formvault/formvault/internal/apperr"
)

// Transform is a pure string transform applied to vault-sourced values
// before validation.
type Transform func(string) string

// FieldDescriptor describes one expected form field and how to source it
// from the vault. Alias order defines match priority: the first alias
// that matches any vault item wins.
type FieldDescriptor struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Aliases     []string       `json:"vault_key_aliases"`
	Required    bool           `json:"required"`
	Format      string         `json:"format,omitempty"`
	Pattern     *regexp.Regexp `json:"-"`
	Transform   Transform      `json:"-"`
	Placeholder string         `json:"placeholder,omitempty"`
	// StaticWarning is shown whenever the field is filled, regardless of
	// the vault item's verification state.
	StaticWarning string `json:"static_warning,omitempty"`
}

// Template is a named, ordered list of field descriptors.
// Field IDs are unique within a template; every template has at least
// one field (enforced by construction).
type Template struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Fields      []FieldDescriptor `json:"fields"`
}

// Field returns the descriptor with the given id, or nil.
func (t *Template) Field(id string) *FieldDescriptor {
	for i := range t.Fields {
		if t.Fields[i].ID == id {
			return &t.Fields[i]
		}
	}
	return nil
}

// Registry holds the built-in form templates and their per-template rule
// sets. Built once at startup, never mutated afterwards.
type Registry struct {
	templates []*Template
	rules     map[string][]Rule
}

// NewRegistry builds the registry with all built-in templates.
func NewRegistry() *Registry {
	return &Registry{
		templates: builtinTemplates(),
		rules:     builtinRules(),
	}
}

// Templates returns all templates in declaration order.
func (r *Registry) Templates() []*Template {
	return r.templates
}

// Template returns the template with the given id.
func (r *Registry) Template(id string) (*Template, error) {
	for _, t := range r.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// Rules returns the static rule set for a template id (may be empty).
func (r *Registry) Rules(templateID string) []Rule {
	return r.rules[templateID]
}
