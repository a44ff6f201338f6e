package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Oxyrus/albumshare/internal/model"
	"github.com/Oxyrus/albumshare/internal/storage"
)

// resolver checks references against the store. Each check is a plain read
// followed by a decision; nothing is locked between the check and the write
// that depends on it.
type resolver struct {
	store storage.Store
}

// parseID rejects malformed identifiers before they reach the store.
func parseID(s string) (storage.ID, error) {
	id, err := storage.ParseID(s)
	if err != nil {
		return storage.ID{}, invalidInput(MsgInvalidID)
	}
	return id, nil
}

// ensureSlugAvailable fails with a conflict when another album already uses
// slug. Two concurrent callers can both pass this check.
func (r resolver) ensureSlugAvailable(ctx context.Context, slug string) error {
	_, err := r.store.FindOne(ctx, storage.CollectionAlbums, storage.Filter{"slug": slug})
	switch {
	case err == nil:
		return conflict(MsgSlugInUse)
	case errors.Is(err, storage.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("service: check slug: %w", err)
	}
}

func (r resolver) album(ctx context.Context, id storage.ID) (model.Album, error) {
	return r.findAlbum(ctx, storage.ByID(id))
}

func (r resolver) albumBySlug(ctx context.Context, slug string) (model.Album, error) {
	return r.findAlbum(ctx, storage.Filter{"slug": slug})
}

func (r resolver) findAlbum(ctx context.Context, filter storage.Filter) (model.Album, error) {
	doc, err := r.store.FindOne(ctx, storage.CollectionAlbums, filter)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Album{}, notFound(MsgAlbumNotFound)
		}
		return model.Album{}, fmt.Errorf("service: find album: %w", err)
	}

	var album model.Album
	if err := bson.Unmarshal(doc, &album); err != nil {
		return model.Album{}, fmt.Errorf("service: decode album: %w", err)
	}
	return album, nil
}

func decodeAll[T any](docs []storage.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := bson.Unmarshal(doc, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
