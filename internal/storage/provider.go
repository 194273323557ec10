// Package storage defines the uploaded-document file store.
package storage

import "github.com/formvault/formvault/internal/models"

// Provider is the interface for uploaded document operations.
type Provider interface {
	// List returns metadata for every stored document.
	List() ([]models.DocumentMeta, error)
	// Read returns the raw bytes of the named document.
	Read(name string) ([]byte, error)
	// Write atomically stores content under name.
	Write(name string, content []byte) error
	// Delete removes the named document.
	Delete(name string) error
}
