package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/albumshare/internal/model"
	"github.com/Oxyrus/albumshare/internal/service"
)

// errorResponse is the body of every rejected request.
type errorResponse struct {
	Detail string             `json:"detail"`
	Errors []model.FieldError `json:"errors,omitempty"`
}

const msgInternal = "internal server error"

// fail writes the response for err. Client errors carry their own message;
// anything else is a store failure, logged and reported without detail.
func (h *AlbumHandler) fail(c *gin.Context, op string, err error) {
	var serr *service.Error
	if errors.As(err, &serr) {
		c.JSON(statusFor(serr.Kind), errorResponse{Detail: serr.Message, Errors: serr.Fields})
		return
	}

	_ = c.Error(err)
	h.logger.Error("failed to "+op, "error", err)
	c.JSON(http.StatusInternalServerError, errorResponse{Detail: msgInternal})
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInvalidInput, service.KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// maxBodyBytes bounds request bodies accepted by bindJSON.
const maxBodyBytes = 1 << 20

// bindJSON binds the request body into dst. Binding failures are reported as
// invalid input naming the offending field where the decoder knows it.
func bindJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil {
		return service.InvalidInput([]model.FieldError{{Field: "body", Message: "request body is required"}})
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		return service.InvalidInput([]model.FieldError{decodeError(err)})
	}
	return nil
}

func decodeError(err error) model.FieldError {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		sizeErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &sizeErr):
		return model.FieldError{Field: "body", Message: fmt.Sprintf("request body must be at most %d bytes", sizeErr.Limit)}
	case errors.Is(err, io.EOF):
		return model.FieldError{Field: "body", Message: "request body is required"}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return model.FieldError{Field: typeErr.Field, Message: fmt.Sprintf("%s must be a %s", typeErr.Field, jsonKind(typeErr))}
	case errors.As(err, &typeErr):
		return model.FieldError{Field: "body", Message: "request body must be a JSON object"}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return model.FieldError{Field: "body", Message: "request body is not valid JSON"}
	default:
		return model.FieldError{Field: "body", Message: "request body is invalid"}
	}
}

func jsonKind(err *json.UnmarshalTypeError) string {
	t := err.Type
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "list"
	default:
		return t.Kind().String()
	}
}
