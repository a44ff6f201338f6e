package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrNotFound indicates that no document matched the lookup.
var ErrNotFound = errors.New("storage: not found")

// ErrConflict indicates that an insert violated a unique index.
var ErrConflict = errors.New("storage: conflict")

// Collection names, one per entity type.
const (
	CollectionAlbums = "album"
	CollectionPhotos = "photo"
)

// IDField is the reserved document field holding the store identifier.
const IDField = "_id"

// Document is a raw BSON document as returned by the store. Callers decode it
// into their own types with bson.Unmarshal.
type Document = bson.Raw

// Filter selects documents by field equality. All entries must match.
type Filter map[string]any

// ByID returns a filter matching the document with the given identifier.
func ByID(id ID) Filter {
	return Filter{IDField: id}
}

// Store is a collection-oriented document store. It performs no validation of
// the documents it holds and is expected to be safe for concurrent use.
type Store interface {
	// Insert stores document in collection and returns its newly assigned
	// identifier. Any identifier carried by document is replaced.
	Insert(ctx context.Context, collection string, document any) (ID, error)
	// FindOne returns the first document matching filter, or ErrNotFound.
	FindOne(ctx context.Context, collection string, filter Filter) (Document, error)
	// FindMany returns the documents matching filter in insertion order. A
	// limit of zero or less returns every match.
	FindMany(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error)
	// Collections lists the names of the collections holding documents.
	Collections(ctx context.Context) ([]string, error)
	// EnsureUniqueIndex makes later inserts fail with ErrConflict when field
	// repeats a non-empty string value already stored in collection.
	EnsureUniqueIndex(ctx context.Context, collection, field string) error
	Ping(ctx context.Context) error
	Close() error
}
