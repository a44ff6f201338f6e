package router

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/albumshare/internal/config"
	"github.com/Oxyrus/albumshare/internal/http/handlers"
	"github.com/Oxyrus/albumshare/internal/http/middleware"
	"github.com/Oxyrus/albumshare/internal/service"
	"github.com/Oxyrus/albumshare/internal/storage"
)

// New builds the HTTP engine over store. storeKind names the backend in the
// diagnostic report.
func New(cfg *config.Config, logger *slog.Logger, store storage.Store, storeKind string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	if cfg.Gzip {
		r.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	albumHandler := handlers.NewAlbumHandler(logger, service.NewAlbums(store))
	statusHandler := handlers.NewStatusHandler(logger, store, handlers.StatusInfo{
		Store:           storeKind,
		DatabaseURLSet:  cfg.DatabaseURLSet,
		DatabaseNameSet: cfg.DatabaseNameSet,
	})

	r.GET("/", statusHandler.Root)
	r.GET("/test", statusHandler.Report)

	api := r.Group("/api")
	api.POST("/albums", albumHandler.Create)
	api.GET("/albums", albumHandler.List)
	api.GET("/albums/:album_id", albumHandler.Get)
	api.POST("/albums/:album_id/photos", albumHandler.AddPhoto)
	api.GET("/albums/:album_id/photos", albumHandler.ListPhotos)
	api.GET("/public/:slug", albumHandler.Public)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})

	return r
}

// corsConfig allows any origin without credentials when origins contains
// "*", otherwise exactly the listed origins with credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
