package forms

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/formvault/formvault/internal/apperr"
	"github.com/formvault/formvault/internal/models"
)

func item(name, value string) models.VaultItem {
	return models.VaultItem{ID: name, Category: "personal", FieldName: name, FieldValue: value}
}

func TestMatchField_AliasPrecedence(t *testing.T) {
	d := &FieldDescriptor{ID: "f", Aliases: []string{"X", "Y"}}
	vault := []models.VaultItem{item("Y", "second"), item("X", "first")}

	got := MatchField(d, vault)
	if got == nil || got.FieldValue != "first" {
		t.Fatalf("MatchField = %v, want item for first alias", got)
	}
}

func TestMatchField_CaseInsensitive(t *testing.T) {
	d := &FieldDescriptor{ID: "email", Aliases: []string{"Email"}}
	vault := []models.VaultItem{item("email", "a@b.c")}

	if got := MatchField(d, vault); got == nil {
		t.Fatal("MatchField returned nil for case-insensitive match")
	}
}

func TestMatchField_NoMatch(t *testing.T) {
	d := &FieldDescriptor{ID: "f", Aliases: []string{"Missing"}}
	if got := MatchField(d, []models.VaultItem{item("Other", "v")}); got != nil {
		t.Errorf("MatchField = %v, want nil", got)
	}
}

func TestDeriveStatus_Transform(t *testing.T) {
	d := &FieldDescriptor{ID: "name", Transform: strings.ToUpper}
	vi := item("Name", "john doe")

	fs := DeriveStatus(d, &vi)
	if fs.Value != "JOHN DOE" {
		t.Errorf("value = %q, want JOHN DOE", fs.Value)
	}
	if fs.Status != StatusFilled {
		t.Errorf("status = %q, want filled", fs.Status)
	}
}

func TestDeriveStatus_Validation(t *testing.T) {
	d := &FieldDescriptor{ID: "pin", Format: "6 digits", Pattern: regexp.MustCompile(`^\d{6}$`)}

	short := item("PIN Code", "12345")
	fs := DeriveStatus(d, &short)
	if fs.Status != StatusInvalid {
		t.Errorf("status = %q, want invalid", fs.Status)
	}
	if fs.Warning != "Format mismatch: expected 6 digits" {
		t.Errorf("warning = %q", fs.Warning)
	}

	ok := item("PIN Code", "123456")
	if fs := DeriveStatus(d, &ok); fs.Status != StatusFilled {
		t.Errorf("status = %q, want filled", fs.Status)
	}
}

func TestDeriveStatus_MissingRequired(t *testing.T) {
	d := &FieldDescriptor{ID: "f", Required: true}
	fs := DeriveStatus(d, nil)
	if fs.Status != StatusEmpty {
		t.Errorf("status = %q, want empty", fs.Status)
	}
	if fs.Warning == "" {
		t.Error("missing required field should carry a warning")
	}
}

func TestDeriveStatus_MissingOptional(t *testing.T) {
	d := &FieldDescriptor{ID: "f"}
	fs := DeriveStatus(d, nil)
	if fs.Status != StatusEmpty || fs.Warning != "" {
		t.Errorf("optional missing = %+v, want empty with no warning", fs)
	}
}

func TestDeriveStatus_StaticWarningIgnoresVerification(t *testing.T) {
	d := &FieldDescriptor{ID: "name", StaticWarning: "Must match Aadhaar exactly"}

	verified := item("Name", "A")
	verified.IsVerified = true
	if fs := DeriveStatus(d, &verified); fs.Warning != "Must match Aadhaar exactly" {
		t.Errorf("verified item warning = %q, static warning must not be gated on verification", fs.Warning)
	}

	pending := item("Name", "A")
	if fs := DeriveStatus(d, &pending); fs.Warning != "Must match Aadhaar exactly" {
		t.Errorf("pending item warning = %q", fs.Warning)
	}
}

func TestAutoFill_Total(t *testing.T) {
	reg := NewRegistry()
	for _, tmpl := range reg.Templates() {
		for _, vault := range [][]models.VaultItem{nil, {item("Full Name", "A"), item("Email", "a@b.c")}} {
			got := AutoFill(tmpl, vault)
			if len(got) != len(tmpl.Fields) {
				t.Errorf("%s: len = %d, want %d", tmpl.ID, len(got), len(tmpl.Fields))
			}
			for _, d := range tmpl.Fields {
				if _, ok := got[d.ID]; !ok {
					t.Errorf("%s: missing entry for %q", tmpl.ID, d.ID)
				}
			}
		}
	}
}

func TestAutoFill_Scenario(t *testing.T) {
	tmpl := &Template{
		ID: "t",
		Fields: []FieldDescriptor{
			{ID: "A", Required: true, Aliases: []string{"X"}},
			{ID: "B", Required: true, Aliases: []string{"Y"}},
		},
	}
	vault := []models.VaultItem{item("X", "v1")}

	got := AutoFill(tmpl, vault)
	if got["A"].Value != "v1" || got["A"].Status != StatusFilled {
		t.Errorf("A = %+v", got["A"])
	}
	if got["B"].Status != StatusEmpty || got["B"].Warning != "Required field - no data found" {
		t.Errorf("B = %+v", got["B"])
	}
	if r := ComputeReadiness(tmpl, got); r != 50 {
		t.Errorf("readiness = %d, want 50", r)
	}
}

func TestAutoFill_Idempotent(t *testing.T) {
	reg := NewRegistry()
	tmpl, err := reg.Template("govt-exam")
	if err != nil {
		t.Fatal(err)
	}
	vault := []models.VaultItem{
		item("Full Name", "john doe"),
		item("DOB", "01/02/2000"),
		item("Aadhaar", "1234 5678 9012"),
	}

	first := AutoFill(tmpl, vault)
	second := AutoFill(tmpl, vault)
	if !reflect.DeepEqual(first, second) {
		t.Error("AutoFill is not deterministic for identical inputs")
	}
}

func TestComputeReadiness(t *testing.T) {
	tmpl := &Template{ID: "t", Fields: []FieldDescriptor{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}}
	statuses := map[string]FieldStatus{
		"a": {Status: StatusFilled},
		"b": {Status: StatusFilled},
		"c": {Status: StatusFilled},
		"d": {Status: StatusEmpty},
	}
	if r := ComputeReadiness(tmpl, statuses); r != 75 {
		t.Errorf("readiness = %d, want 75", r)
	}
}

func TestComputeReadiness_RoundsHalfUp(t *testing.T) {
	tmpl := &Template{ID: "t", Fields: []FieldDescriptor{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}, {ID: "f"}, {ID: "g"}, {ID: "h"}}}
	statuses := map[string]FieldStatus{"a": {Status: StatusFilled}, "b": {Status: StatusFilled}, "c": {Status: StatusFilled}, "d": {Status: StatusFilled}}
	// 4/8 = 50, trivially exact; 5/8 = 62.5 must round to 63.
	statuses["e"] = FieldStatus{Status: StatusFilled}
	if r := ComputeReadiness(tmpl, statuses); r != 63 {
		t.Errorf("readiness = %d, want 63 (half-up)", r)
	}
}

func TestEditField_AppliesTransformBeforeValidation(t *testing.T) {
	tmpl := &Template{ID: "t", Fields: []FieldDescriptor{
		{ID: "ifsc", Format: "11 characters", Pattern: regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`), Transform: strings.ToUpper},
	}}

	// Lowercase input passes only because the transform runs first.
	fs, err := EditField(tmpl, "ifsc", "sbin0001234")
	if err != nil {
		t.Fatal(err)
	}
	if fs.Status != StatusFilled || fs.Value != "SBIN0001234" {
		t.Errorf("edit = %+v, want transformed filled value", fs)
	}
}

func TestEditField_Invalid(t *testing.T) {
	tmpl := &Template{ID: "t", Fields: []FieldDescriptor{
		{ID: "pin", Format: "6 digits", Pattern: rePincode},
	}}
	fs, err := EditField(tmpl, "pin", "12")
	if err != nil {
		t.Fatal(err)
	}
	if fs.Status != StatusInvalid || fs.Warning != "Format: 6 digits" {
		t.Errorf("edit = %+v", fs)
	}
}

func TestEditField_Empty(t *testing.T) {
	tmpl := &Template{ID: "t", Fields: []FieldDescriptor{{ID: "a", Required: true}}}
	fs, err := EditField(tmpl, "a", "")
	if err != nil {
		t.Fatal(err)
	}
	if fs.Status != StatusEmpty || fs.Warning != "" {
		t.Errorf("edit empty = %+v", fs)
	}
}

func TestEditField_UnknownID(t *testing.T) {
	tmpl := &Template{ID: "t", Fields: []FieldDescriptor{{ID: "a"}}}
	if _, err := EditField(tmpl, "nope", "v"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRegistry_FieldIDsUnique(t *testing.T) {
	for _, tmpl := range NewRegistry().Templates() {
		seen := map[string]bool{}
		for _, d := range tmpl.Fields {
			if seen[d.ID] {
				t.Errorf("%s: duplicate field id %q", tmpl.ID, d.ID)
			}
			seen[d.ID] = true
			if len(d.Aliases) == 0 {
				t.Errorf("%s/%s: empty alias list", tmpl.ID, d.ID)
			}
		}
	}
}
