package forms

import (
	"math"
	"strings"

	"github.com/formvault/formvault/internal/apperr"
	"github.com/formvault/formvault/internal/models"
)

// Status classifies a reconciled field.
type Status string

const (
	StatusEmpty    Status = "empty"
	StatusFilled   Status = "filled"
	StatusInvalid  Status = "invalid"
	StatusMismatch Status = "mismatch"
)

// FieldStatus is the derived state of one form field. It exists only
// while a template is selected and is never persisted.
type FieldStatus struct {
	Value   string `json:"value"`
	Status  Status `json:"status"`
	Warning string `json:"warning,omitempty"`
}

// MatchField finds the vault item backing a descriptor. Aliases are
// tried in order; for each alias the item set is scanned for a
// case-insensitive field_name match. An earlier alias's match is
// preferred even if a later alias would also match a different item.
// Returns nil when no alias matches any item.
func MatchField(d *FieldDescriptor, items []models.VaultItem) *models.VaultItem {
	for _, alias := range d.Aliases {
		for i := range items {
			if strings.EqualFold(items[i].FieldName, alias) {
				return &items[i]
			}
		}
	}
	return nil
}

// DeriveStatus classifies a matched (or unmatched) vault item for a
// descriptor. The descriptor transform is applied before validation.
// A static warning attaches whenever the field fills; verification
// state is deliberately not consulted here.
func DeriveStatus(d *FieldDescriptor, item *models.VaultItem) FieldStatus {
	if item == nil {
		fs := FieldStatus{Value: "", Status: StatusEmpty}
		if d.Required {
			fs.Warning = "Required field - no data found"
		}
		return fs
	}

	value := item.FieldValue
	if d.Transform != nil {
		value = d.Transform(value)
	}
	if d.Pattern != nil && !d.Pattern.MatchString(value) {
		return FieldStatus{
			Value:   value,
			Status:  StatusInvalid,
			Warning: "Format mismatch: expected " + d.Format,
		}
	}
	return FieldStatus{Value: value, Status: StatusFilled, Warning: d.StaticWarning}
}

// AutoFill reconciles every field of a template against the vault.
// Total and deterministic: the result has exactly one entry per
// descriptor regardless of the vault contents. O(fields × items),
// which is fine at vault scale (tens of each).
func AutoFill(t *Template, items []models.VaultItem) map[string]FieldStatus {
	out := make(map[string]FieldStatus, len(t.Fields))
	for i := range t.Fields {
		d := &t.Fields[i]
		out[d.ID] = DeriveStatus(d, MatchField(d, items))
	}
	return out
}

// EditField revalidates a manually entered value for one field.
// The descriptor transform is applied before validation so that manual
// edits and vault-sourced values are judged by the same rules.
// Returns apperr.ErrNotFound for an unknown field id, which indicates a
// caller/template mismatch rather than bad user input.
func EditField(t *Template, fieldID, raw string) (FieldStatus, error) {
	d := t.Field(fieldID)
	if d == nil {
		return FieldStatus{}, apperr.ErrNotFound
	}
	if raw == "" {
		return FieldStatus{Value: "", Status: StatusEmpty}, nil
	}
	value := raw
	if d.Transform != nil {
		value = d.Transform(value)
	}
	if d.Pattern != nil && !d.Pattern.MatchString(value) {
		return FieldStatus{
			Value:   value,
			Status:  StatusInvalid,
			Warning: "Format: " + d.Format,
		}, nil
	}
	return FieldStatus{Value: value, Status: StatusFilled}, nil
}

// ComputeReadiness returns the percentage of fields currently filled,
// rounded half-up to the nearest integer.
func ComputeReadiness(t *Template, statuses map[string]FieldStatus) int {
	if len(t.Fields) == 0 {
		return 0
	}
	filled := 0
	for _, d := range t.Fields {
		if statuses[d.ID].Status == StatusFilled {
			filled++
		}
	}
	return int(math.Round(float64(filled) / float64(len(t.Fields)) * 100))
}
