// Package storage persists the site content document.
package storage

import (
	"context"

	"github.com/starford/vitrine/internal/models"
)

// Provider is the interface for content document persistence.
type Provider interface {
	// Load returns the current document, materialising the default one if none exists.
	Load(ctx context.Context) (*models.Document, error)
	// Save overwrites the whole document.
	Save(ctx context.Context, doc *models.Document) error
	// Path returns the absolute location of the document.
	Path() string
	// LastWritten returns the checksum of the bytes most recently written by this process.
	LastWritten() string
}
