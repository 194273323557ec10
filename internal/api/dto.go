package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/formvault/formvault/internal/models"
)

func anySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// UpsertItemRequest is the request body for storing one vault field.
type UpsertItemRequest struct {
	Category   string `json:"category"`
	FieldName  string `json:"field_name"`
	FieldValue string `json:"field_value"`
	IsVerified bool   `json:"is_verified"`
}

// Validate validates the upsert request.
func (r UpsertItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Category, validation.Required, validation.In(anySlice(models.Categories)...)),
		validation.Field(&r.FieldName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.FieldValue, validation.Required, validation.Length(1, 2000)),
	)
}

// ValidateFieldRequest carries a manually entered field value.
type ValidateFieldRequest struct {
	Value string `json:"value"`
}

// ImportRequest is the request body for bulk-importing extracted fields.
type ImportRequest struct {
	Fields []models.ExtractedField `json:"fields"`
}

// Validate validates the import request.
func (r ImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Fields, validation.Required, validation.Length(1, 100)),
	)
}

// ExtractRequest is the request body for document extraction. Exactly
// one of ImageBase64 or Filename must be set; a filename refers to a
// previously uploaded document.
type ExtractRequest struct {
	ImageBase64  string `json:"imageBase64,omitempty"`
	Filename     string `json:"filename,omitempty"`
	DocumentType string `json:"documentType"`
}

// Validate validates the extract request.
func (r ExtractRequest) Validate() error {
	if (r.ImageBase64 == "") == (r.Filename == "") {
		return validation.Errors{"imageBase64": validation.NewError(
			"validation_one_of", "exactly one of imageBase64 or filename is required")}
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.DocumentType, validation.Required, validation.In(anySlice(models.DocumentTypes)...)),
	)
}

// ChatRequest is the request body for the assistant endpoint.
type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

// Validate validates the chat request.
func (r ChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required, validation.Length(1, 4000)),
	)
}

// TranslateRequest is the request body for the translation endpoint.
type TranslateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
}

// Validate validates the translate request.
func (r TranslateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required, validation.Length(1, 8000)),
		validation.Field(&r.TargetLanguage, validation.Required, validation.Length(2, 40)),
	)
}

// TemplateSummary is a template list entry.
type TemplateSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	FieldCount  int    `json:"field_count"`
}
