// Package store persists article documents and uploaded files.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pevans/technews/article"
	"github.com/pevans/technews/config"
)

// Custom errors for store operations
var (
	ErrNotFound     = errors.New("document not found")
	ErrUnknownField = errors.New("unknown document field")
)

// Store is a document store for articles.
type Store interface {
	// Create stores doc and returns its assigned id.
	Create(ctx context.Context, doc article.Document) (string, error)
	// Get returns the document with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*article.Document, error)
	// List returns documents newest first.
	List(ctx context.Context, limit, offset int) ([]article.Document, error)
	// Update sets the named fields on a document. Field names are the
	// document's JSON names.
	Update(ctx context.Context, id string, fields map[string]any) error
	// Delete removes a document.
	Delete(ctx context.Context, id string) error
	// UploadFile stores raw bytes and returns the file id.
	UploadFile(ctx context.Context, data []byte, name string) (string, error)
	// Close releases the store's resources.
	Close() error
}

// updatableFields are the document fields Update accepts. Every one holds a
// string.
var updatableFields = map[string]bool{
	"title":              true,
	"title_translated":   true,
	"url":                true,
	"summary":            true,
	"summary_translated": true,
	"content_translated": true,
	"source":             true,
	"image_url":          true,
	"published_date":     true,
	"category":           true,
	"status":             true,
}

// validateFields rejects unknown fields and non-string values.
func validateFields(fields map[string]any) error {
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}
	for name, value := range fields {
		if !updatableFields[name] {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		if _, ok := value.(string); !ok {
			return fmt.Errorf("field %q must be a string, got %T", name, value)
		}
	}
	return nil
}

// Open creates the store selected by cfg.Store.Type.
func Open(cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.Store.Type) {
	case "", "sqlite":
		st, err := NewSQLiteStore(cfg.Store.DSN, cfg.Appwrite.CollectionID)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "appwrite":
		st, err := NewAppwriteStore(cfg.Appwrite, nil)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store type: %q (valid: sqlite, appwrite)", cfg.Store.Type)
	}
}
