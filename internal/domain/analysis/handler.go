package analysis

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/kharcha/internal/domain/signals"
)

// Handler exposes expense export over HTTP.
type Handler struct {
	svc    *Service
	hash   func(string) string
	loc    *time.Location
	logger *slog.Logger
}

// NewHandler creates the export handler. hash maps a raw platform user id to
// the hashed form the stores are keyed by.
func NewHandler(svc *Service, hash func(string) string, loc *time.Location, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, hash: hash, loc: loc, logger: logger}
}

// RegisterRoutes mounts the export endpoint on the router group.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/export", h.HandleExport)
}

// HandleExport streams a user's active expenses as a CSV or XLSX download.
// The window comes from the "window" query param ("this month", "last week",
// a bare ISO date) and defaults to the trailing 30 days.
func (h *Handler) HandleExport(c *gin.Context) {
	ctx := c.Request.Context()

	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	var win signals.TimeWindow
	if parsed, ok := signals.ParseTimeWindow(h.loc, strings.ToLower(c.Query("window"))); ok {
		win = *parsed
	} else {
		now := time.Now().In(h.loc)
		win = signals.TimeWindow{From: now.AddDate(0, 0, -30), To: now, Description: "last 30 days"}
	}

	items, err := h.svc.Export(ctx, h.hash(userID), win)
	if err != nil {
		h.logger.ErrorContext(ctx, "export failed",
			slog.String("window", win.Description), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="expenses.csv"`)
		err = WriteCSV(c.Writer, items)
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="expenses.xlsx"`)
		err = WriteXLSX(c.Writer, items)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported export format"})
		return
	}
	if err != nil {
		// Headers are already written, all we can do is log.
		h.logger.ErrorContext(ctx, "export write failed", slog.Any("error", err))
	}
}
