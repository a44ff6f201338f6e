package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/albumshare/internal/model"
	"github.com/Oxyrus/albumshare/internal/storage"
)

// AlbumService is the set of album and photo operations served over HTTP.
type AlbumService interface {
	CreateAlbum(ctx context.Context, in model.AlbumInput) (storage.ID, error)
	ListAlbums(ctx context.Context) ([]model.Album, error)
	GetAlbum(ctx context.Context, albumID string) (model.Album, error)
	AddPhoto(ctx context.Context, albumID string, in model.PhotoInput) (storage.ID, error)
	ListPhotos(ctx context.Context, albumID string) ([]model.Photo, error)
	GetPublicAlbum(ctx context.Context, slug string) (model.PublicAlbum, error)
}

type AlbumHandler struct {
	logger *slog.Logger
	albums AlbumService
}

func NewAlbumHandler(logger *slog.Logger, albums AlbumService) *AlbumHandler {
	return &AlbumHandler{
		logger: logger,
		albums: albums,
	}
}

type createdResponse struct {
	ID string `json:"id"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func (h *AlbumHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var in model.AlbumInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, "create album", err)
		return
	}

	id, err := h.albums.CreateAlbum(ctx, in)
	if err != nil {
		h.fail(c, "create album", err)
		return
	}

	h.logger.Info("album created", "albumID", id.Hex())
	c.JSON(http.StatusCreated, createdResponse{ID: id.Hex()})
}

func (h *AlbumHandler) List(c *gin.Context) {
	albums, err := h.albums.ListAlbums(c.Request.Context())
	if err != nil {
		h.fail(c, "list albums", err)
		return
	}

	if albums == nil {
		albums = []model.Album{}
	}
	c.JSON(http.StatusOK, listResponse[model.Album]{Items: albums})
}

func (h *AlbumHandler) Get(c *gin.Context) {
	album, err := h.albums.GetAlbum(c.Request.Context(), c.Param("album_id"))
	if err != nil {
		h.fail(c, "load album", err)
		return
	}

	c.JSON(http.StatusOK, album)
}

func (h *AlbumHandler) AddPhoto(c *gin.Context) {
	ctx := c.Request.Context()
	albumID := c.Param("album_id")

	var in model.PhotoInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, "add photo", err)
		return
	}

	id, err := h.albums.AddPhoto(ctx, albumID, in)
	if err != nil {
		h.fail(c, "add photo", err)
		return
	}

	h.logger.Info("photo added", "albumID", albumID, "photoID", id.Hex())
	c.JSON(http.StatusCreated, createdResponse{ID: id.Hex()})
}

func (h *AlbumHandler) ListPhotos(c *gin.Context) {
	photos, err := h.albums.ListPhotos(c.Request.Context(), c.Param("album_id"))
	if err != nil {
		h.fail(c, "list photos", err)
		return
	}

	if photos == nil {
		photos = []model.Photo{}
	}
	c.JSON(http.StatusOK, listResponse[model.Photo]{Items: photos})
}

func (h *AlbumHandler) Public(c *gin.Context) {
	album, err := h.albums.GetPublicAlbum(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, "load public album", err)
		return
	}

	c.JSON(http.StatusOK, album)
}
