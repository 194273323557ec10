// Package models defines the domain types for FormVault.
package models

import "time"

// Field categories produced by document extraction.
const (
	CategoryPersonal = "personal"
	CategoryIdentity = "identity"
	CategoryContact  = "contact"
	CategoryAcademic = "academic"
)

// Categories lists every valid vault category.
var Categories = []string{CategoryPersonal, CategoryIdentity, CategoryContact, CategoryAcademic}

// Document types accepted by the extraction endpoint.
const (
	DocAadhaar        = "aadhaar"
	DocPAN            = "pan"
	DocPassport       = "passport"
	DocMarksheet      = "marksheet"
	DocDrivingLicense = "driving_license"
	DocVoterID        = "voter_id"
	DocOther          = "other"
)

// DocumentTypes lists every accepted document type.
var DocumentTypes = []string{DocAadhaar, DocPAN, DocPassport, DocMarksheet, DocDrivingLicense, DocVoterID, DocOther}

// VaultItem is one extracted field stored in a user's vault.
// At most one item exists per (user_id, category, field_name).
type VaultItem struct {
	ID               string     `json:"id"`
	UserID           string     `json:"-"`
	Category         string     `json:"category"`
	FieldName        string     `json:"field_name"`
	FieldValue       string     `json:"field_value"`
	IsVerified       bool       `json:"is_verified"`
	VerificationDate *time.Time `json:"verification_date,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// VaultStats summarises a user's vault.
type VaultStats struct {
	Total      int            `json:"total"`
	Verified   int            `json:"verified"`
	Pending    int            `json:"pending"`
	Categories map[string]int `json:"categories"`
}

// ExtractedField is a single field returned by the document extraction call.
type ExtractedField struct {
	Category          string `json:"category"`
	FieldName         string `json:"fieldName"`
	FieldValue        string `json:"fieldValue"`
	Confidence        int    `json:"confidence"`
	NeedsVerification bool   `json:"needsVerification"`
	OriginalLabel     string `json:"originalLabel,omitempty"`
}

// ExtractedDocument is the full result of a document extraction call.
type ExtractedDocument struct {
	RawText           string           `json:"rawText"`
	DocumentType      string           `json:"documentType"`
	Fields            []ExtractedField `json:"fields"`
	OverallConfidence int              `json:"overallConfidence"`
	Warnings          []string         `json:"warnings"`
}

// DocumentMeta is a lightweight representation of an uploaded document file.
type DocumentMeta struct {
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
