// Package service implements the album and photo operations on top of a
// storage.Store: validation, reference checks, persistence and the shape of
// the returned documents.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Oxyrus/albumshare/internal/model"
	"github.com/Oxyrus/albumshare/internal/storage"
)

// Albums holds no state besides the injected store and is safe for
// concurrent use.
type Albums struct {
	store    storage.Store
	resolver resolver
	now      func() time.Time
}

func NewAlbums(store storage.Store) *Albums {
	return &Albums{
		store:    store,
		resolver: resolver{store: store},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateAlbum validates in, checks that a supplied slug is unused and stores
// the album.
func (s *Albums) CreateAlbum(ctx context.Context, in model.AlbumInput) (storage.ID, error) {
	if errs := in.Validate(); len(errs) > 0 {
		return storage.ID{}, InvalidInput(errs)
	}

	if in.HasSlug() {
		if err := s.resolver.ensureSlugAvailable(ctx, *in.Slug); err != nil {
			return storage.ID{}, err
		}
	}

	id, err := s.store.Insert(ctx, storage.CollectionAlbums, in.ToAlbum(s.now()))
	if err != nil {
		// Only reachable when the unique slug index is enabled.
		if errors.Is(err, storage.ErrConflict) {
			return storage.ID{}, conflict(MsgSlugInUse)
		}
		return storage.ID{}, fmt.Errorf("service: create album: %w", err)
	}
	return id, nil
}

// ListAlbums returns every album in insertion order.
func (s *Albums) ListAlbums(ctx context.Context) ([]model.Album, error) {
	docs, err := s.store.FindMany(ctx, storage.CollectionAlbums, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("service: list albums: %w", err)
	}

	albums, err := decodeAll[model.Album](docs)
	if err != nil {
		return nil, fmt.Errorf("service: decode albums: %w", err)
	}
	return albums, nil
}

func (s *Albums) GetAlbum(ctx context.Context, albumID string) (model.Album, error) {
	id, err := parseID(albumID)
	if err != nil {
		return model.Album{}, err
	}
	return s.resolver.album(ctx, id)
}

// AddPhoto stores a photo under the album named by the path id. The body must
// name the same album, and the album must exist.
func (s *Albums) AddPhoto(ctx context.Context, albumID string, in model.PhotoInput) (storage.ID, error) {
	id, err := parseID(albumID)
	if err != nil {
		return storage.ID{}, err
	}

	if errs := in.Validate(); len(errs) > 0 {
		return storage.ID{}, InvalidInput(errs)
	}

	if in.AlbumID != albumID {
		return storage.ID{}, invalidInput(MsgAlbumMismatch)
	}

	if _, err := s.resolver.album(ctx, id); err != nil {
		return storage.ID{}, err
	}

	// Store the canonical hex form so lookups by album agree on the key.
	in.AlbumID = id.Hex()
	photoID, err := s.store.Insert(ctx, storage.CollectionPhotos, in.ToPhoto(s.now()))
	if err != nil {
		return storage.ID{}, fmt.Errorf("service: add photo: %w", err)
	}
	return photoID, nil
}

// ListPhotos returns the photos of an existing album in insertion order.
func (s *Albums) ListPhotos(ctx context.Context, albumID string) ([]model.Photo, error) {
	id, err := parseID(albumID)
	if err != nil {
		return nil, err
	}

	if _, err := s.resolver.album(ctx, id); err != nil {
		return nil, err
	}

	return s.photos(ctx, id.Hex())
}

// GetPublicAlbum resolves an album by slug and embeds its photos.
func (s *Albums) GetPublicAlbum(ctx context.Context, slug string) (model.PublicAlbum, error) {
	album, err := s.resolver.albumBySlug(ctx, slug)
	if err != nil {
		return model.PublicAlbum{}, err
	}

	photos, err := s.photos(ctx, album.ID.Hex())
	if err != nil {
		return model.PublicAlbum{}, err
	}

	return model.PublicAlbum{Album: album, Photos: photos}, nil
}

func (s *Albums) photos(ctx context.Context, albumID string) ([]model.Photo, error) {
	docs, err := s.store.FindMany(ctx, storage.CollectionPhotos, storage.Filter{"album_id": albumID}, 0)
	if err != nil {
		return nil, fmt.Errorf("service: list photos: %w", err)
	}

	photos, err := decodeAll[model.Photo](docs)
	if err != nil {
		return nil, fmt.Errorf("service: decode photos: %w", err)
	}
	return photos, nil
}
