// Package model defines the album and photo documents, the request inputs that
// create them and the field constraints those inputs must satisfy.
package model

import (
	"encoding/json"
	"time"

	"github.com/Oxyrus/albumshare/internal/storage"
)

// Album is a shareable collection of photos as stored in the album collection.
type Album struct {
	ID        storage.ID `bson:"_id,omitempty" json:"-"`
	Title     string     `bson:"title" json:"title"`
	OwnerName *string    `bson:"owner_name" json:"owner_name"`
	CoverURL  *string    `bson:"cover_url" json:"cover_url"`
	Slug      *string    `bson:"slug" json:"slug"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// MarshalJSON exposes the store identifier as a string id field.
func (a Album) MarshalJSON() ([]byte, error) {
	type album Album
	return json.Marshal(struct {
		ID string `json:"id"`
		album
	}{
		ID:    a.ID.Hex(),
		album: album(a),
	})
}

// Photo is an image reference stored in the photo collection. AlbumID holds
// the hex identifier of the owning album.
type Photo struct {
	ID        storage.ID `bson:"_id,omitempty" json:"-"`
	AlbumID   string     `bson:"album_id" json:"album_id"`
	URL       string     `bson:"url" json:"url"`
	Caption   *string    `bson:"caption" json:"caption"`
	AddedBy   *string    `bson:"added_by" json:"added_by"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// MarshalJSON exposes the store identifier as a string id field.
func (p Photo) MarshalJSON() ([]byte, error) {
	type photo Photo
	return json.Marshal(struct {
		ID string `json:"id"`
		photo
	}{
		ID:    p.ID.Hex(),
		photo: photo(p),
	})
}

// PublicAlbum is an album together with all of its photos, as served by slug.
type PublicAlbum struct {
	Album  Album
	Photos []Photo
}

func (p PublicAlbum) MarshalJSON() ([]byte, error) {
	type album Album
	photos := p.Photos
	if photos == nil {
		photos = []Photo{}
	}
	return json.Marshal(struct {
		ID string `json:"id"`
		album
		Photos []Photo `json:"photos"`
	}{
		ID:     p.Album.ID.Hex(),
		album:  album(p.Album),
		Photos: photos,
	})
}
