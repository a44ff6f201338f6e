// Package mongo implements storage.Store on top of a MongoDB database, one
// collection per entity type.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/Oxyrus/albumshare/internal/storage"
)

// Store is a MongoDB-backed implementation of the storage.Store interface.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to the deployment at uri and selects the named database. The
// connection is verified with a ping before returning.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: uri must not be empty")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo: database name must not be empty")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(database),
	}, nil
}

func (s *Store) Insert(ctx context.Context, collection string, document any) (storage.ID, error) {
	id := storage.NewID()

	doc, err := storage.WithID(document, id)
	if err != nil {
		return storage.ID{}, fmt.Errorf("mongo: insert %s: encode: %w", collection, err)
	}

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ID{}, fmt.Errorf("mongo: insert %s: %w", collection, storage.ErrConflict)
		}
		return storage.ID{}, fmt.Errorf("mongo: insert %s: %w", collection, err)
	}

	return id, nil
}

func (s *Store) FindOne(ctx context.Context, collection string, filter storage.Filter) (storage.Document, error) {
	raw, err := s.db.Collection(collection).FindOne(ctx, toBSON(filter)).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find %s: %w", collection, err)
	}
	return raw, nil
}

func (s *Store) FindMany(ctx context.Context, collection string, filter storage.Filter, limit int) ([]storage.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: storage.IDField, Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, toBSON(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	result := make([]storage.Document, 0)
	for cursor.Next(ctx) {
		// Current is only valid until the next call to Next.
		doc := make(bson.Raw, len(cursor.Current))
		copy(doc, cursor.Current)
		result = append(result, doc)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo: find %s: %w", collection, err)
	}

	return result, nil
}

func (s *Store) Collections(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo: list collections: %w", err)
	}
	return names, nil
}

// EnsureUniqueIndex creates a unique index on field restricted to documents
// where field holds a non-empty string. Missing, null and empty values never
// collide.
func (s *Store) EnsureUniqueIndex(ctx context.Context, collection, field string) error {
	model := mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: 1}},
		Options: options.Index().
			SetName(field + "_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: field, Value: bson.D{
				{Key: "$type", Value: "string"},
				{Key: "$gt", Value: ""},
			}}}),
	}

	if _, err := s.db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("mongo: ensure index %s.%s: %w", collection, field, storage.ErrConflict)
		}
		return fmt.Errorf("mongo: ensure index %s.%s: %w", collection, field, err)
	}
	return nil
}

// Ping verifies the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func toBSON(filter storage.Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}

var _ storage.Store = (*Store)(nil)
