package router_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oxyrus/albumshare/internal/config"
	"github.com/Oxyrus/albumshare/internal/http/middleware"
	"github.com/Oxyrus/albumshare/internal/router"
	"github.com/Oxyrus/albumshare/internal/storage"
	"github.com/Oxyrus/albumshare/internal/storage/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestConfig() *config.Config {
	return &config.Config{
		Addr:           ":0",
		DatabaseURL:    "sqlite://test.db",
		DatabaseName:   "albumshare",
		AllowedOrigins: []string{"*"},
	}
}

func newEngine(t *testing.T, cfg *config.Config) (*gin.Engine, *sqlite.Store) {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "albumshare.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return router.New(cfg, logger, store, "sqlite"), store
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createAlbum(t *testing.T, r http.Handler, body string) string {
	t.Helper()

	rec := do(t, r, http.MethodPost, "/api/albums", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decode(t, rec)["id"].(string)
	require.True(t, storage.IsValidID(id), "unexpected id %q", id)
	return id
}

func TestPublicAlbumScenario(t *testing.T) {
	r, _ := newEngine(t, newTestConfig())

	albumID := createAlbum(t, r, `{"title":"Trip","slug":"trip-2024"}`)

	first := do(t, r, http.MethodPost, "/api/albums/"+albumID+"/photos",
		`{"album_id":"`+albumID+`","url":"https://img.example/1.jpg","caption":"Beach"}`)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := do(t, r, http.MethodPost, "/api/albums/"+albumID+"/photos",
		`{"album_id":"`+albumID+`","url":"https://img.example/2.jpg"}`)
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())

	rec := do(t, r, http.MethodGet, "/api/public/trip-2024", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, albumID, body["id"])
	assert.Equal(t, "Trip", body["title"])
	assert.NotContains(t, body, "_id")

	photos, ok := body["photos"].([]any)
	require.True(t, ok, "photos missing: %v", body)
	require.Len(t, photos, 2)
	assert.Equal(t, "https://img.example/1.jpg", photos[0].(map[string]any)["url"])
	assert.Equal(t, "https://img.example/2.jpg", photos[1].(map[string]any)["url"])
	for _, p := range photos {
		assert.Equal(t, albumID, p.(map[string]any)["album_id"])
	}
}

func TestAlbumRoundTrip(t *testing.T) {
	r, _ := newEngine(t, newTestConfig())

	albumID := createAlbum(t, r, `{"title":"Summer","owner_name":"Ana","cover_url":"https://img.example/cover.jpg"}`)

	rec := do(t, r, http.MethodGet, "/api/albums/"+albumID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, albumID, body["id"])
	assert.Equal(t, "Ana", body["owner_name"])
	assert.Nil(t, body["slug"])

	again := do(t, r, http.MethodGet, "/api/albums/"+albumID, "")
	assert.Equal(t, rec.Body.String(), again.Body.String())

	list := decode(t, do(t, r, http.MethodGet, "/api/albums", ""))
	items, ok := list["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, albumID, items[0].(map[string]any)["id"])
}

func TestMalformedIDs(t *testing.T) {
	r, _ := newEngine(t, newTestConfig())

	for _, path := range []string{"/api/albums/not-an-id", "/api/albums/not-an-id/photos"} {
		rec := do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.JSONEq(t, `{"detail":"Invalid ID format"}`, rec.Body.String(), path)
	}

	rec := do(t, r, http.MethodPost, "/api/albums/not-an-id/photos", `{"album_id":"not-an-id","url":"https://x.example"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Invalid ID format"}`, rec.Body.String())
}

func TestMissingAlbum(t *testing.T) {
	r, _ := newEngine(t, newTestConfig())
	missing := storage.NewID().Hex()

	for _, path := range []string{"/api/albums/" + missing, "/api/albums/" + missing + "/photos", "/api/public/nope"} {
		rec := do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"detail":"Album not found"}`, rec.Body.String(), path)
	}

	rec := do(t, r, http.MethodPost, "/api/albums/"+missing+"/photos", `{"album_id":"`+missing+`","url":"https://x.example"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddPhotoMismatch(t *testing.T) {
	r, store := newEngine(t, newTestConfig())

	albumID := createAlbum(t, r, `{"title":"Trip"}`)
	other := createAlbum(t, r, `{"title":"Other"}`)

	rec := do(t, r, http.MethodPost, "/api/albums/"+albumID+"/photos", `{"album_id":"`+other+`","url":"https://x.example"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"album_id mismatch"}`, rec.Body.String())

	docs, err := store.FindMany(context.Background(), storage.CollectionPhotos, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDuplicateSlug(t *testing.T) {
	r, _ := newEngine(t, newTestConfig())

	createAlbum(t, r, `{"title":"Trip","slug":"trip-2024"}`)

	rec := do(t, r, http.MethodPost, "/api/albums", `{"title":"Trip again","slug":"trip-2024"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Slug already in use"}`, rec.Body.String())

	createAlbum(t, r, `{"title":"No slug"}`)
	createAlbum(t, r, `{"title":"No slug either"}`)
}

func TestValidationErrors(t *testing.T) {
	r, _ := newEngine(t, newTestConfig())

	rec := do(t, r, http.MethodPost, "/api/albums", `{"title":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Invalid input", body["detail"])
	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	assert.Equal(t, "title", errs[0].(map[string]any)["field"])

	albumID := createAlbum(t, r, `{"title":"Trip"}`)
	rec = do(t, r, http.MethodPost, "/api/albums/"+albumID+"/photos", `{"album_id":"`+albumID+`","url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmptyPhotoList(t *testing.T) {
	r, _ := newEngine(t, newTestConfig())
	albumID := createAlbum(t, r, `{"title":"Trip"}`)

	rec := do(t, r, http.MethodGet, "/api/albums/"+albumID+"/photos", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestRootAndDiagnostics(t *testing.T) {
	cfg := newTestConfig()
	cfg.DatabaseURLSet = true
	r, _ := newEngine(t, cfg)

	rec := do(t, r, http.MethodGet, "/", "")
	assert.JSONEq(t, `{"message":"Album Share API"}`, rec.Body.String())

	createAlbum(t, r, `{"title":"Trip"}`)

	rec = do(t, r, http.MethodGet, "/test", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "connected", body["connection_status"])
	assert.Equal(t, "set", body["database_url"])
	assert.Equal(t, "sqlite", body["store"])
	assert.Equal(t, []any{storage.CollectionAlbums}, body["collections"])
	assert.NotContains(t, rec.Body.String(), "test.db")
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newEngine(t, newTestConfig())

	rec := do(t, r, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())
}

func TestRequestIDHeader(t *testing.T) {
	r, _ := newEngine(t, newTestConfig())

	rec := do(t, r, http.MethodGet, "/", "")
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestCORSAllowAll(t *testing.T) {
	r, _ := newEngine(t, newTestConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/albums", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSListedOrigins(t *testing.T) {
	cfg := newTestConfig()
	cfg.AllowedOrigins = []string{"https://app.example"}
	r, _ := newEngine(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGzipResponses(t *testing.T) {
	cfg := newTestConfig()
	cfg.Gzip = true
	r, _ := newEngine(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Album Share API"}`, string(plain))
}
