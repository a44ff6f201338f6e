package model

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Field limits, counted in characters. The validator tags refer to them
// through the aliases registered in newValidator.
const (
	MaxAlbumTitleLength = 120
	MaxOwnerNameLength  = 80
	MaxCaptionLength    = 200
	MaxAddedByLength    = 80
)

// FieldError describes one violated constraint, keyed by the JSON field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AlbumInput is the body accepted when creating an album.
type AlbumInput struct {
	Title     string  `json:"title" validate:"required,title_len"`
	OwnerName *string `json:"owner_name" validate:"omitempty,owner_name_len"`
	CoverURL  *string `json:"cover_url" validate:"omitempty,weburl"`
	Slug      *string `json:"slug"`
}

// Validate checks the field constraints. Slug uniqueness is not checked here.
func (in *AlbumInput) Validate() []FieldError {
	return validateStruct(in)
}

// ToAlbum builds the album document for a validated input.
func (in *AlbumInput) ToAlbum(now time.Time) Album {
	return Album{
		Title:     in.Title,
		OwnerName: in.OwnerName,
		CoverURL:  in.CoverURL,
		Slug:      in.Slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasSlug reports whether a non-empty slug was supplied.
func (in *AlbumInput) HasSlug() bool {
	return in.Slug != nil && *in.Slug != ""
}

// PhotoInput is the body accepted when adding a photo to an album.
type PhotoInput struct {
	AlbumID string  `json:"album_id" validate:"required"`
	URL     string  `json:"url" validate:"required,weburl"`
	Caption *string `json:"caption" validate:"omitempty,caption_len"`
	AddedBy *string `json:"added_by" validate:"omitempty,added_by_len"`
}

func (in *PhotoInput) Validate() []FieldError {
	return validateStruct(in)
}

// ToPhoto builds the photo document for a validated input.
func (in *PhotoInput) ToPhoto(now time.Time) Photo {
	return Photo{
		AlbumID:   in.AlbumID,
		URL:       in.URL,
		Caption:   in.Caption,
		AddedBy:   in.AddedBy,
		CreatedAt: now,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	for alias, limit := range map[string]int{
		"title_len":      MaxAlbumTitleLength,
		"owner_name_len": MaxOwnerNameLength,
		"caption_len":    MaxCaptionLength,
		"added_by_len":   MaxAddedByLength,
	} {
		v.RegisterAlias(alias, "max="+strconv.Itoa(limit))
	}

	if err := v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		return IsWebURL(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// IsWebURL reports whether s is an absolute http or https URL with a host.
func IsWebURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Hostname() != ""
}

func validateStruct(s any) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "weburl":
		return fmt.Sprintf("%s must be a valid http or https URL", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
