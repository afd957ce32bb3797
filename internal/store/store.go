// Package store persists registered documents keyed by their identifier.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lllllllleong/documentverification/internal/models"
)

// ErrNotFound is returned by Get when no record exists for the identifier.
var ErrNotFound = errors.New("record not found")

// RecordStore holds at most one record per kind and identifier.
//
// GetOrCreate is idempotent: when a record exists it is returned unchanged and
// defaults are ignored, so the first registration of an identifier wins.
// created reports whether this call stored a new record.
type RecordStore interface {
	GetOrCreate(ctx context.Context, kind models.Kind, identifier string, defaults map[string]string) (record *models.Record, created bool, err error)
	Get(ctx context.Context, kind models.Kind, identifier string) (*models.Record, error)
}

// New returns the store named by backend ("firestore" or "memory").
func New(ctx context.Context, backend, projectID, collectionPrefix string) (RecordStore, error) {
	switch backend {
	case "", "firestore":
		return NewFirestoreStore(ctx, projectID, collectionPrefix)
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown record store %q", backend)
}

func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
