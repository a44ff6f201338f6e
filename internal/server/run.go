// Package server runs the HTTP server until its context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// DefaultShutdownTimeout bounds graceful shutdown when no timeout is set.
const DefaultShutdownTimeout = 10 * time.Second

type Options struct {
	Server          *http.Server
	Logger          *slog.Logger
	ShutdownTimeout time.Duration
	// Ready, when set, receives the bound listener address once the server
	// accepts connections.
	Ready chan<- net.Addr
}

// Run listens on opts.Server.Addr and serves until the server fails or ctx is
// cancelled, in which case in-flight requests get ShutdownTimeout to finish.
func Run(ctx context.Context, opts Options) error {
	if opts.Server == nil {
		return fmt.Errorf("server: http server is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	ln, err := net.Listen("tcp", opts.Server.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", opts.Server.Addr, err)
	}

	logger.Info("server listening", "addr", ln.Addr().String())
	if opts.Ready != nil {
		opts.Ready <- ln.Addr()
		close(opts.Ready)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- opts.Server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server", "timeout", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdownErr := opts.Server.Shutdown(shutdownCtx)

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-shutdownCtx.Done():
		if shutdownErr != nil {
			return shutdownErr
		}
		return shutdownCtx.Err()
	}

	return shutdownErr
}
