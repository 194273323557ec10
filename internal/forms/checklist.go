package forms

// ChecklistItem is one readiness predicate result. The checklist is
// informational only; it never blocks an operation.
type ChecklistItem struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
}

// Checklist evaluates the fixed readiness predicates against a status
// map. Pure function of the statuses.
func Checklist(t *Template, statuses map[string]FieldStatus) []ChecklistItem {
	requiredFilled := true
	for _, d := range t.Fields {
		if d.Required && statuses[d.ID].Status != StatusFilled {
			requiredFilled = false
			break
		}
	}

	noInvalid := true
	for _, fs := range statuses {
		if fs.Status == StatusInvalid {
			noInvalid = false
			break
		}
	}

	filled := func(id string) bool { return statuses[id].Status == StatusFilled }

	return []ChecklistItem{
		{Label: "All required fields filled", Passed: requiredFilled},
		{Label: "No format errors", Passed: noInvalid},
		{Label: "Name matches ID document", Passed: filled("name")},
		{Label: "Contact details verified", Passed: filled("email") && filled("mobile")},
	}
}
