// Package docstore defines the generic document store the repositories are written against.
// Adapters live under internal/backend.
package docstore

import (
	"context"
	"errors"
)

// IDField is the name of the identifier field in every document.
const IDField = "_id"

var (
	// ErrNotFound is returned by FindOne when no document matches.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned by Insert when a unique index would be violated.
	ErrDuplicate = errors.New("duplicate key")
)

// Store is a minimal document database.
// Every mutation is atomic for the single document it touches; nothing spans documents.
type Store interface {
	// Insert stores doc and returns its id. A zero id field is filled by the store.
	Insert(ctx context.Context, collection string, doc any) (string, error)

	// FindOne decodes the first document matching filter into out.
	// Returns ErrNotFound if none matches.
	FindOne(ctx context.Context, collection string, filter Filter, out any) error

	// FindMany decodes all matching documents into out, which must be a pointer to a slice.
	FindMany(ctx context.Context, collection string, filter Filter, out any) error

	// UpdateOne applies update to the first document matching filter.
	UpdateOne(ctx context.Context, collection string, filter Filter, update Update) (UpdateResult, error)

	// DeleteOne removes the first document matching filter and reports how many were removed.
	DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error)

	// DeleteMany removes every document matching filter.
	DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error)

	// EnsureIndex creates idx if it does not exist yet.
	EnsureIndex(ctx context.Context, collection string, idx Index) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// UpdateResult reports the outcome of UpdateOne.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// Index describes a secondary index over one or more fields.
type Index struct {
	Fields []string
	Unique bool
}
