package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	maxReportedCollections = 10
	maxErrorExcerpt        = 50
)

// Inspector is the part of the store the diagnostic report needs.
type Inspector interface {
	Ping(ctx context.Context) error
	Collections(ctx context.Context) ([]string, error)
}

// StatusInfo describes the configured store for the diagnostic report.
type StatusInfo struct {
	Store           string
	DatabaseURLSet  bool
	DatabaseNameSet bool
}

type StatusHandler struct {
	logger *slog.Logger
	store  Inspector
	info   StatusInfo
}

func NewStatusHandler(logger *slog.Logger, store Inspector, info StatusInfo) *StatusHandler {
	return &StatusHandler{
		logger: logger,
		store:  store,
		info:   info,
	}
}

type statusReport struct {
	Backend          string   `json:"backend"`
	Store            string   `json:"store"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

func (h *StatusHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Album Share API"})
}

// Report pings the store and lists up to ten collections. A store failure is
// reported in the body, the status is always 200.
func (h *StatusHandler) Report(c *gin.Context) {
	report := statusReport{
		Backend:          "running",
		Store:            h.info.Store,
		Database:         "not available",
		DatabaseURL:      setOrNot(h.info.DatabaseURLSet),
		DatabaseName:     setOrNot(h.info.DatabaseNameSet),
		ConnectionStatus: "not connected",
		Collections:      []string{},
	}

	if h.store != nil {
		report.Database = "available"
		ctx := c.Request.Context()

		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("diagnostic ping failed", "error", err)
			report.Database = "error: " + excerpt(err.Error(), maxErrorExcerpt)
			c.JSON(http.StatusOK, report)
			return
		}
		report.ConnectionStatus = "connected"

		collections, err := h.store.Collections(ctx)
		if err != nil {
			h.logger.Warn("diagnostic collection listing failed", "error", err)
			report.Database = "connected but error: " + excerpt(err.Error(), maxErrorExcerpt)
		} else {
			if len(collections) > maxReportedCollections {
				collections = collections[:maxReportedCollections]
			}
			if collections != nil {
				report.Collections = collections
			}
			report.Database = "connected and working"
		}
	}

	c.JSON(http.StatusOK, report)
}

func setOrNot(set bool) string {
	if set {
		return "set"
	}
	return "not set"
}

// excerpt returns at most n runes of s.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
