package sqlite

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Oxyrus/albumshare/internal/storage"
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (s *Store) Insert(ctx context.Context, collection string, document any) (storage.ID, error) {
	id := storage.NewID()

	doc, err := storage.WithID(document, id)
	if err != nil {
		return storage.ID{}, fmt.Errorf("sqlite: insert %s: encode: %w", collection, err)
	}

	body, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return storage.ID{}, fmt.Errorf("sqlite: insert %s: encode: %w", collection, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, created_at)
		VALUES (?, ?, ?, ?)`,
		collection,
		id.Hex(),
		string(body),
		time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ID{}, fmt.Errorf("sqlite: insert %s: %w", collection, storage.ErrConflict)
		}
		return storage.ID{}, fmt.Errorf("sqlite: insert %s: %w", collection, err)
	}

	return id, nil
}

func (s *Store) FindOne(ctx context.Context, collection string, filter storage.Filter) (storage.Document, error) {
	docs, err := s.FindMany(ctx, collection, filter, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, storage.ErrNotFound
	}
	return docs[0], nil
}

func (s *Store) FindMany(ctx context.Context, collection string, filter storage.Filter, limit int) ([]storage.Document, error) {
	where, args, err := buildWhere(collection, filter)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find %s: %w", collection, err)
	}

	query := "SELECT body FROM documents WHERE " + where + " ORDER BY seq"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find %s: %w", collection, err)
	}
	defer rows.Close()

	result := make([]storage.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: find %s: %w", collection, err)
		}
		result = append(result, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: find %s: %w", collection, err)
	}

	return result, nil
}

func (s *Store) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT collection
		FROM documents
		ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: list collections: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list collections: %w", err)
	}

	return names, nil
}

// EnsureUniqueIndex creates a partial expression index over the non-empty
// string values of field. Identifiers are inlined because SQLite rejects bound parameters in
// index definitions, so both are checked against fieldPattern first.
func (s *Store) EnsureUniqueIndex(ctx context.Context, collection, field string) error {
	if !fieldPattern.MatchString(collection) || !fieldPattern.MatchString(field) {
		return fmt.Errorf("sqlite: ensure index: invalid name %q.%q", collection, field)
	}

	stmt := fmt.Sprintf(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_%[1]s_%[2]s_unique
		ON documents(json_extract(body, '$.%[2]s'))
		WHERE collection = '%[1]s'
			AND json_type(body, '$.%[2]s') = 'text'
			AND json_extract(body, '$.%[2]s') <> ''`,
		collection,
		field,
	)

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sqlite: ensure index %s.%s: %w", collection, field, storage.ErrConflict)
		}
		return fmt.Errorf("sqlite: ensure index %s.%s: %w", collection, field, err)
	}

	return nil
}

func buildWhere(collection string, filter storage.Filter) (string, []any, error) {
	clauses := []string{"collection = ?"}
	args := []any{collection}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := filter[key]

		if key == storage.IDField {
			hex, err := idValue(value)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, "id = ?")
			args = append(args, hex)
			continue
		}

		if !fieldPattern.MatchString(key) {
			return "", nil, fmt.Errorf("invalid filter field %q", key)
		}

		path := "$." + key
		switch v := value.(type) {
		case nil:
			clauses = append(clauses, "json_extract(body, ?) IS NULL")
			args = append(args, path)
		case string, int, int32, int64, float64:
			clauses = append(clauses, "json_extract(body, ?) = ?")
			args = append(args, path, v)
		case bool:
			clauses = append(clauses, "json_extract(body, ?) = ?")
			if v {
				args = append(args, path, 1)
			} else {
				args = append(args, path, 0)
			}
		default:
			return "", nil, fmt.Errorf("unsupported filter value %T for field %q", value, key)
		}
	}

	return strings.Join(clauses, " AND "), args, nil
}

func idValue(value any) (string, error) {
	switch v := value.(type) {
	case storage.ID:
		return v.Hex(), nil
	case string:
		id, err := storage.ParseID(v)
		if err != nil {
			return "", err
		}
		return id.Hex(), nil
	default:
		return "", fmt.Errorf("unsupported id value %T", value)
	}
}

type documentScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s documentScanner) (storage.Document, error) {
	var body string
	if err := s.Scan(&body); err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}

	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(body), false, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	return raw, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
