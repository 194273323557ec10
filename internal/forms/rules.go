package forms

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is a static per-template check evaluated over the full status
// map. It returns a warning string, or "" when the check passes.
type Rule func(statuses map[string]FieldStatus) string

var reUpperName = regexp.MustCompile(`^[A-Z\s]+$`)

// builtinRules maps template ids to their fixed rule sets.
func builtinRules() map[string][]Rule {
	return map[string][]Rule{
		"govt-exam": {
			func(statuses map[string]FieldStatus) string {
				name := statuses["name"].Value
				if name != "" && !reUpperName.MatchString(name) {
					return "Name should be in UPPERCASE for government forms"
				}
				return ""
			},
			func(statuses map[string]FieldStatus) string {
				aadhaar := statuses["aadhaar"].Value
				if aadhaar != "" && len(strings.ReplaceAll(aadhaar, " ", "")) != 12 {
					return "Aadhaar must be exactly 12 digits"
				}
				return ""
			},
		},
	}
}

// LocalWarnings produces the synchronous warning list for a template:
// one warning per missing required field, one per invalid field (in
// template order), followed by the template's static rule checks.
func LocalWarnings(r *Registry, t *Template, statuses map[string]FieldStatus) []string {
	var warnings []string
	for _, d := range t.Fields {
		fs := statuses[d.ID]
		if d.Required && (fs.Value == "" || fs.Status == StatusEmpty) {
			warnings = append(warnings, fmt.Sprintf("%q is required but missing from your vault", d.Label))
		}
		if fs.Status == StatusInvalid {
			warnings = append(warnings, fmt.Sprintf("%q format may cause rejection: %s", d.Label, fs.Warning))
		}
	}
	for _, rule := range r.Rules(t.ID) {
		if w := rule(statuses); w != "" {
			warnings = append(warnings, w)
		}
	}
	return warnings
}
