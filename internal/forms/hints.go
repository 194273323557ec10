package forms

import "strings"

// CopyHint describes how a vault field should be presented when copied
// into an external form: display name, expected format, an optional
// caution, and an optional transform applied to the copied value.
type CopyHint struct {
	Name      string    `json:"name"`
	Format    string    `json:"format"`
	Caution   string    `json:"caution,omitempty"`
	Transform Transform `json:"-"`
}

var copyHints = map[string]CopyHint{
	"full name":           {Name: "Name as per Document", Format: "UPPERCASE, no special characters", Caution: "Must match Aadhaar/ID exactly", Transform: strings.ToUpper},
	"name":                {Name: "Name as per Document", Format: "UPPERCASE, no special characters", Caution: "Must match Aadhaar/ID exactly", Transform: strings.ToUpper},
	"father's name":       {Name: "Father's Name", Format: "UPPERCASE", Caution: "Must match certificate exactly", Transform: strings.ToUpper},
	"mother's name":       {Name: "Mother's Name", Format: "UPPERCASE", Transform: strings.ToUpper},
	"date of birth":       {Name: "Date of Birth", Format: "DD/MM/YYYY", Caution: "Verify format matches the form requirement"},
	"dob":                 {Name: "Date of Birth", Format: "DD/MM/YYYY", Caution: "Verify format matches the form requirement"},
	"aadhaar number":      {Name: "Aadhaar Number", Format: "XXXX XXXX XXXX (12 digits with spaces)", Caution: "Must be exactly 12 digits"},
	"pan number":          {Name: "PAN Number", Format: "AAAAA0000A (10 characters)", Caution: "Alphanumeric, case sensitive"},
	"mobile":              {Name: "Mobile Number", Format: "10 digits, no country code"},
	"phone":               {Name: "Phone Number", Format: "10 digits, no country code"},
	"email":               {Name: "Email Address", Format: "lowercase@domain.com", Transform: strings.ToLower},
	"address":             {Name: "Permanent Address", Format: "As per document, include PIN code"},
	"pin code":            {Name: "PIN Code", Format: "6 digits"},
	"registration number": {Name: "Registration/Roll Number", Format: "Alphanumeric, case sensitive", Caution: "Verify with original certificate"},
}

// Hint returns the copy hint for a vault field name (case-insensitive),
// or nil when the field has no registered hint.
func Hint(fieldName string) *CopyHint {
	if h, ok := copyHints[strings.ToLower(fieldName)]; ok {
		return &h
	}
	return nil
}

// CopyValue applies the field's hint transform (if any) to a raw vault
// value, yielding the value that should land on the clipboard.
func CopyValue(fieldName, raw string) string {
	if h := Hint(fieldName); h != nil && h.Transform != nil {
		return h.Transform(raw)
	}
	return raw
}
