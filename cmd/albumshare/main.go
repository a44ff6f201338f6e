package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/albumshare/internal/config"
	"github.com/Oxyrus/albumshare/internal/logging"
	"github.com/Oxyrus/albumshare/internal/router"
	"github.com/Oxyrus/albumshare/internal/server"
	"github.com/Oxyrus/albumshare/internal/storage"
	"github.com/Oxyrus/albumshare/internal/storage/backend"
)

const connectTimeout = 15 * time.Second

func main() {
	bootstrapLogger := logging.New(slog.LevelInfo, logging.FormatText)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	store, kind, err := backend.Open(connectCtx, cfg.DatabaseURL, cfg.DatabaseName)
	cancel()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", "store", kind, "error", err)
		}
	}()
	logger.Info("store opened", "store", kind, "database", cfg.DatabaseName)

	if cfg.UniqueSlugs {
		if err := store.EnsureUniqueIndex(ctx, storage.CollectionAlbums, "slug"); err != nil {
			return fmt.Errorf("ensure unique slug index: %w", err)
		}
		logger.Info("unique slug index ensured")
	}

	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.New(cfg, logger, store, string(kind)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server.Run(ctx, server.Options{
		Server:          srv,
		Logger:          logger,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
}
