package service

import (
	"errors"

	"github.com/Oxyrus/albumshare/internal/model"
)

// Kind classifies a client-facing failure. Errors that are not *Error are
// store failures.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// Error is a rejection caused by the request rather than the store.
type Error struct {
	Kind    Kind
	Message string
	Fields  []model.FieldError
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Messages returned to clients.
const (
	MsgInvalidID     = "Invalid ID format"
	MsgInvalidInput  = "Invalid input"
	MsgSlugInUse     = "Slug already in use"
	MsgAlbumNotFound = "Album not found"
	MsgAlbumMismatch = "album_id mismatch"
)

func invalidInput(message string, fields ...model.FieldError) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Fields: fields}
}

func conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// InvalidInput builds the error reported for request bodies that fail to
// decode or validate.
func InvalidInput(fields []model.FieldError) *Error {
	return invalidInput(MsgInvalidInput, fields...)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
