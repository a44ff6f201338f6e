// Package backend opens the storage.Store selected by a connection string.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/Oxyrus/albumshare/internal/storage"
	"github.com/Oxyrus/albumshare/internal/storage/mongo"
	"github.com/Oxyrus/albumshare/internal/storage/sqlite"
)

// Kind names a store implementation.
type Kind string

const (
	KindMongo  Kind = "mongo"
	KindSQLite Kind = "sqlite"
)

// Detect returns the store kind for url and the location to hand to it: the
// url itself for MongoDB, a file path for SQLite.
func Detect(url string) (Kind, string, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return "", "", fmt.Errorf("backend: database url must not be empty")
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		return KindMongo, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		return KindSQLite, strings.TrimPrefix(url, "sqlite://"), nil
	case strings.HasPrefix(url, "file:"):
		return KindSQLite, strings.TrimPrefix(url, "file:"), nil
	case strings.Contains(url, "://"):
		return "", "", fmt.Errorf("backend: unsupported database url scheme in %q", redact(url))
	default:
		return KindSQLite, url, nil
	}
}

// Open connects to the store described by url. database is the database name
// used by MongoDB and ignored by SQLite.
func Open(ctx context.Context, url, database string) (storage.Store, Kind, error) {
	kind, location, err := Detect(url)
	if err != nil {
		return nil, "", err
	}

	switch kind {
	case KindMongo:
		store, err := mongo.Open(ctx, location, database)
		if err != nil {
			return nil, kind, err
		}
		return store, kind, nil
	default:
		store, err := sqlite.Open(location)
		if err != nil {
			return nil, kind, err
		}
		return store, kind, nil
	}
}

// redact drops credentials from a connection string before it is logged.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}
