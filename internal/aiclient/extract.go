package aiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/formvault/formvault/internal/models"
)

const extractSystemPrompt = `You are an expert document analyzer and OCR specialist. Your task is to:
1. Accurately extract ALL text from the document image
2. Understand the document structure and context
3. Identify and categorize different fields (name, date of birth, address, ID numbers, academic scores, etc.)
4. Return the data in a structured JSON format

For the extracted data, categorize each field into one of these categories:
- personal: Name, date of birth, gender, father's name, mother's name
- identity: ID numbers (Aadhaar, PAN, passport, voter ID), registration numbers
- contact: Address, phone, email, city, state, pincode
- academic: Grades, marks, subjects, institution names, roll numbers, years

IMPORTANT:
- Be extremely accurate with numbers, dates, and names
- If text is unclear, include a confidence score (0-100)
- Flag any fields that need user verification
- Extract ALL visible text, even if partially obscured

Respond ONLY with valid JSON in this exact format:
{
  "rawText": "full extracted text from document",
  "documentType": "detected document type",
  "fields": [
    {
      "category": "personal|identity|contact|academic",
      "fieldName": "field name in English",
      "fieldValue": "extracted value",
      "confidence": 95,
      "needsVerification": false,
      "originalLabel": "label as shown in document"
    }
  ],
  "overallConfidence": 90,
  "warnings": ["any warnings or issues detected"]
}`

// ExtractDocument runs OCR and field extraction over a base64-encoded
// document image via the gateway's vision model.
func (c *Client) ExtractDocument(ctx context.Context, imageBase64, documentType string) (*models.ExtractedDocument, error) {
	if documentType == "" {
		documentType = "document"
	}
	dataURL := imageBase64
	if !strings.HasPrefix(dataURL, "data:") {
		dataURL = "data:image/jpeg;base64," + imageBase64
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.extractModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: fmt.Sprintf("Analyze this %s image and extract all information. Return structured data in JSON format.", documentType),
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, mapGatewayErr(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("aiclient: empty response from gateway")
	}
	return parseExtraction(resp.Choices[0].Message.Content, documentType), nil
}

// parseExtraction decodes the model's JSON reply. Models wrap JSON in
// markdown fences often enough that stripping them first is mandatory.
// An unparseable reply degrades to a raw-text result with a warning
// instead of failing the extraction.
func parseExtraction(content, documentType string) *models.ExtractedDocument {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var doc models.ExtractedDocument
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return &models.ExtractedDocument{
			RawText:           content,
			DocumentType:      documentType,
			Fields:            []models.ExtractedField{},
			OverallConfidence: 50,
			Warnings:          []string{"Could not structure the extracted data properly"},
		}
	}
	if doc.DocumentType == "" {
		doc.DocumentType = documentType
	}
	if doc.Fields == nil {
		doc.Fields = []models.ExtractedField{}
	}
	if doc.Warnings == nil {
		doc.Warnings = []string{}
	}
	return &doc
}
