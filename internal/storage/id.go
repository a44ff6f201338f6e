package storage

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ID is the opaque store identifier. On the wire it is the 24 character hex
// encoding returned by ID.Hex.
type ID = bson.ObjectID

// ErrInvalidID is returned by ParseID for strings that are not well-formed
// identifiers.
var ErrInvalidID = errors.New("storage: invalid id")

// NewID returns a fresh identifier.
func NewID() ID {
	return bson.NewObjectID()
}

// ParseID decodes the external string form of an identifier. It only checks
// the format; the referenced document may not exist.
func ParseID(s string) (ID, error) {
	id, err := bson.ObjectIDFromHex(s)
	if err != nil {
		return ID{}, ErrInvalidID
	}
	return id, nil
}

// IsValidID reports whether s is a well-formed identifier.
func IsValidID(s string) bool {
	_, err := ParseID(s)
	return err == nil
}

// WithID re-encodes document as an ordered BSON document whose first element
// is the _id field set to id. An _id already present in document is dropped.
func WithID(document any, id ID) (bson.D, error) {
	raw, err := bson.Marshal(document)
	if err != nil {
		return nil, err
	}

	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	out := make(bson.D, 0, len(fields)+1)
	out = append(out, bson.E{Key: IDField, Value: id})
	for _, f := range fields {
		if f.Key == IDField {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
