package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/formvault/formvault/internal/advisory"
	"github.com/formvault/formvault/internal/forms"
	"github.com/formvault/formvault/internal/formservice"
	"github.com/formvault/formvault/internal/models"
	"github.com/formvault/formvault/internal/testutil"
)

// fakeAssistant returns canned gateway replies.
type fakeAssistant struct {
	chatReply      string
	translateReply string
	extractReply   *models.ExtractedDocument
	err            error
}

func (f *fakeAssistant) Chat(_ context.Context, _, _ string, _ []models.VaultItem) (string, error) {
	return f.chatReply, f.err
}

func (f *fakeAssistant) Translate(_ context.Context, _, _, _ string) (string, error) {
	return f.translateReply, f.err
}

func (f *fakeAssistant) ExtractDocument(_ context.Context, _, _ string) (*models.ExtractedDocument, error) {
	return f.extractReply, f.err
}

// testEnv sets up a temp vault DB, uploads dir, service and router.
// authToken == "" means auth disabled.
func testEnv(t *testing.T, authToken string, ai Assistant) http.Handler {
	t.Helper()

	db := testutil.TestDB(t)
	_, docs := testutil.TestUploads(t)
	registry := forms.NewRegistry()
	svc := formservice.NewService(db, registry, advisory.NewDispatcher(advisory.Config{}))

	return NewRouter(svc, registry, db, docs, ai, nil, authToken != "", authToken, nil)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListAndGetTemplates(t *testing.T) {
	router := testEnv(t, "", nil)

	w := doJSON(t, router, http.MethodGet, "/templates", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list struct {
		Templates []TemplateSummary `json:"templates"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Templates) != 3 {
		t.Fatalf("templates = %d, want 3", len(list.Templates))
	}

	w = doJSON(t, router, http.MethodGet, "/templates/govt-exam", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var tmpl forms.Template
	_ = json.Unmarshal(w.Body.Bytes(), &tmpl)
	if tmpl.ID != "govt-exam" || len(tmpl.Fields) != 10 {
		t.Errorf("template = %+v", tmpl)
	}

	w = doJSON(t, router, http.MethodGet, "/templates/nope", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown template status = %d, want 404", w.Code)
	}
}

func TestVaultCRUD(t *testing.T) {
	router := testEnv(t, "", nil)

	// Upsert.
	w := doJSON(t, router, http.MethodPost, "/vault/items", UpsertItemRequest{
		Category: "personal", FieldName: "Full Name", FieldValue: "John Doe",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("upsert status = %d, body = %s", w.Code, w.Body.String())
	}
	var saved models.VaultItem
	_ = json.Unmarshal(w.Body.Bytes(), &saved)
	if saved.ID == "" {
		t.Fatal("saved item has no id")
	}

	// List.
	w = doJSON(t, router, http.MethodGet, "/vault", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list struct {
		Items []models.VaultItem `json:"items"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Items) != 1 {
		t.Fatalf("items = %v", list.Items)
	}

	// Search filter.
	w = doJSON(t, router, http.MethodGet, "/vault?q=john", nil, "")
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Items) != 1 {
		t.Errorf("search items = %v", list.Items)
	}
	w = doJSON(t, router, http.MethodGet, "/vault?q=zzz", nil, "")
	list.Items = nil
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Items) != 0 {
		t.Errorf("search miss items = %v", list.Items)
	}

	// Stats.
	w = doJSON(t, router, http.MethodGet, "/vault/stats", nil, "")
	var stats models.VaultStats
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.Total != 1 {
		t.Errorf("stats = %+v", stats)
	}

	// Delete.
	w = doJSON(t, router, http.MethodDelete, "/vault/items/"+saved.ID, nil, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodDelete, "/vault/items/"+saved.ID, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestVaultValidation(t *testing.T) {
	router := testEnv(t, "", nil)

	w := doJSON(t, router, http.MethodPost, "/vault/items", UpsertItemRequest{
		Category: "bogus", FieldName: "X", FieldValue: "Y",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid category status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/vault/items", UpsertItemRequest{
		Category: "personal", FieldName: "", FieldValue: "Y",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty field name status = %d, want 400", w.Code)
	}
}

func TestUserScoping(t *testing.T) {
	router := testEnv(t, "", nil)

	w := doJSON(t, router, http.MethodPost, "/vault/items", UpsertItemRequest{
		Category: "personal", FieldName: "Full Name", FieldValue: "Alpha",
	}, "alice")
	if w.Code != http.StatusCreated {
		t.Fatalf("upsert status = %d", w.Code)
	}

	var list struct {
		Items []models.VaultItem `json:"items"`
	}
	w = doJSON(t, router, http.MethodGet, "/vault", nil, "bob")
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Items) != 0 {
		t.Errorf("bob sees alice's vault: %v", list.Items)
	}

	// No header falls back to the local scope, not alice's.
	w = doJSON(t, router, http.MethodGet, "/vault", nil, "")
	list.Items = nil
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Items) != 0 {
		t.Errorf("default scope sees alice's vault: %v", list.Items)
	}
}

func TestAutofillEndpoint(t *testing.T) {
	router := testEnv(t, "", nil)

	seed := []UpsertItemRequest{
		{Category: "personal", FieldName: "Full Name", FieldValue: "john doe"},
		{Category: "identity", FieldName: "Aadhaar Number", FieldValue: "1234 5678 9012"},
		{Category: "contact", FieldName: "PIN Code", FieldValue: "12345"},
	}
	for _, it := range seed {
		if w := doJSON(t, router, http.MethodPost, "/vault/items", it, ""); w.Code != http.StatusCreated {
			t.Fatalf("seed status = %d", w.Code)
		}
	}

	w := doJSON(t, router, http.MethodPost, "/templates/govt-exam/autofill", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("autofill status = %d, body = %s", w.Code, w.Body.String())
	}
	var state formservice.FormState
	_ = json.Unmarshal(w.Body.Bytes(), &state)
	if state.Fields["name"].Value != "JOHN DOE" || state.Fields["name"].Status != forms.StatusFilled {
		t.Errorf("name = %+v", state.Fields["name"])
	}
	if state.Fields["pincode"].Status != forms.StatusInvalid {
		t.Errorf("pincode = %+v", state.Fields["pincode"])
	}
	// name + aadhaar filled of 10 fields.
	if state.Readiness != 20 {
		t.Errorf("readiness = %d, want 20", state.Readiness)
	}
	if len(state.Checklist) != 4 || len(state.Warnings) == 0 {
		t.Errorf("checklist = %v, warnings = %v", state.Checklist, state.Warnings)
	}

	// Warnings endpoint reflects the selection's local warnings.
	w = doJSON(t, router, http.MethodGet, "/templates/govt-exam/warnings", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("warnings status = %d", w.Code)
	}
	var warn struct {
		Warnings []string `json:"warnings"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &warn)
	if len(warn.Warnings) == 0 {
		t.Error("warnings should carry the local set")
	}

	w = doJSON(t, router, http.MethodPost, "/templates/nope/autofill", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown template autofill = %d, want 404", w.Code)
	}
}

func TestValidateFieldEndpoint(t *testing.T) {
	router := testEnv(t, "", nil)

	w := doJSON(t, router, http.MethodPost, "/templates/govt-exam/fields/name/validate",
		ValidateFieldRequest{Value: "john doe"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("validate status = %d", w.Code)
	}
	var fs forms.FieldStatus
	_ = json.Unmarshal(w.Body.Bytes(), &fs)
	if fs.Status != forms.StatusFilled || fs.Value != "JOHN DOE" {
		t.Errorf("status = %+v", fs)
	}

	w = doJSON(t, router, http.MethodPost, "/templates/govt-exam/fields/bogus/validate",
		ValidateFieldRequest{Value: "x"}, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown field status = %d, want 404", w.Code)
	}
}

func TestImportEndpoint(t *testing.T) {
	router := testEnv(t, "", nil)

	w := doJSON(t, router, http.MethodPost, "/vault/import", ImportRequest{
		Fields: []models.ExtractedField{
			{Category: "identity", FieldName: "PAN Number", FieldValue: "ABCDE1234F"},
			{Category: "personal", FieldName: "Full Name", FieldValue: "JOHN", NeedsVerification: true},
		},
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("import status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Imported int                `json:"imported"`
		Items    []models.VaultItem `json:"items"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Imported != 2 {
		t.Fatalf("imported = %d", resp.Imported)
	}

	w = doJSON(t, router, http.MethodPost, "/vault/import", ImportRequest{}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty import status = %d, want 400", w.Code)
	}
}

func TestCopyEndpoint(t *testing.T) {
	router := testEnv(t, "", nil)

	w := doJSON(t, router, http.MethodPost, "/vault/items", UpsertItemRequest{
		Category: "contact", FieldName: "Email", FieldValue: "J@X.COM",
	}, "")
	var saved models.VaultItem
	_ = json.Unmarshal(w.Body.Bytes(), &saved)

	w = doJSON(t, router, http.MethodPost, "/vault/items/"+saved.ID+"/copy", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("copy status = %d", w.Code)
	}
	var res formservice.CopyResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Value != "j@x.com" {
		t.Errorf("copy value = %q, hint transform not applied", res.Value)
	}

	w = doJSON(t, router, http.MethodPost, "/vault/items/missing/copy", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing copy status = %d, want 404", w.Code)
	}
}

func TestAuthTokenMode(t *testing.T) {
	router := testEnv(t, "secret", nil)

	req := httptest.NewRequest(http.MethodGet, "/templates", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/templates", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/templates", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", w.Code)
	}
}

func TestDocumentUploadAndExtract(t *testing.T) {
	ai := &fakeAssistant{extractReply: &models.ExtractedDocument{
		RawText:      "x",
		DocumentType: "aadhaar",
		Fields: []models.ExtractedField{
			{Category: "identity", FieldName: "Aadhaar Number", FieldValue: "1234 5678 9012", Confidence: 95},
		},
		OverallConfidence: 90,
		Warnings:          []string{},
	}}
	router := testEnv(t, "", ai)

	// Upload.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "aadhaar.png")
	_, _ = part.Write([]byte{0x89, 'P', 'N', 'G'})
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}

	// Listed.
	w2 := doJSON(t, router, http.MethodGet, "/documents", nil, "")
	var list struct {
		Documents []models.DocumentMeta `json:"documents"`
	}
	_ = json.Unmarshal(w2.Body.Bytes(), &list)
	if len(list.Documents) != 1 || list.Documents[0].Filename != "aadhaar.png" {
		t.Fatalf("documents = %v", list.Documents)
	}

	// Extract by filename.
	w2 = doJSON(t, router, http.MethodPost, "/documents/extract", ExtractRequest{
		Filename: "aadhaar.png", DocumentType: "aadhaar",
	}, "")
	if w2.Code != http.StatusOK {
		t.Fatalf("extract status = %d, body = %s", w2.Code, w2.Body.String())
	}
	var doc models.ExtractedDocument
	_ = json.Unmarshal(w2.Body.Bytes(), &doc)
	if len(doc.Fields) != 1 || doc.Fields[0].FieldName != "Aadhaar Number" {
		t.Errorf("doc = %+v", doc)
	}

	// Exactly one of filename/imageBase64.
	w2 = doJSON(t, router, http.MethodPost, "/documents/extract", ExtractRequest{
		DocumentType: "aadhaar",
	}, "")
	if w2.Code != http.StatusBadRequest {
		t.Errorf("ambiguous extract status = %d, want 400", w2.Code)
	}

	// Unknown file.
	w2 = doJSON(t, router, http.MethodPost, "/documents/extract", ExtractRequest{
		Filename: "missing.png", DocumentType: "aadhaar",
	}, "")
	if w2.Code != http.StatusNotFound {
		t.Errorf("missing doc extract status = %d, want 404", w2.Code)
	}
}

func TestUploadRejectsBadExtension(t *testing.T) {
	router := testEnv(t, "", nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "evil.sh")
	_, _ = part.Write([]byte("#!/bin/sh"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad extension status = %d, want 400", w.Code)
	}
}

func TestAssistantEndpoints(t *testing.T) {
	ai := &fakeAssistant{chatReply: "hello there", translateReply: "नमस्ते"}
	router := testEnv(t, "", ai)

	w := doJSON(t, router, http.MethodPost, "/assistant/chat", ChatRequest{Message: "hi"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "hello there") {
		t.Errorf("chat body = %s", w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/translate", TranslateRequest{
		Text: "hello", TargetLanguage: "Hindi",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("translate status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/assistant/chat", ChatRequest{}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty message status = %d, want 400", w.Code)
	}
}

func TestAssistantUnconfigured(t *testing.T) {
	router := testEnv(t, "", nil)

	w := doJSON(t, router, http.MethodPost, "/assistant/chat", ChatRequest{Message: "hi"}, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("chat status = %d, want 503", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/documents/extract", ExtractRequest{
		ImageBase64: "aGk=", DocumentType: "other",
	}, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("extract status = %d, want 503", w.Code)
	}
}
