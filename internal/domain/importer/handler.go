package importer

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FACorreiaa/kharcha/internal/domain/chat"
	"github.com/FACorreiaa/kharcha/pkg/storage"
)

// Handler exposes statement upload over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates the import handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the import and statement-archive endpoints.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/import", h.HandleImport)
	r.GET("/statements", h.HandleListStatements)
	r.GET("/statements/:id", h.HandleDownloadStatement)
	r.DELETE("/statements/:id", h.HandleDeleteStatement)
}

// HandleImport accepts a multipart statement upload. The form carries the
// raw platform user id in "user_id" and the file in "statement".
func (h *Handler) HandleImport(c *gin.Context) {
	ctx := c.Request.Context()

	userID := c.PostForm("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	fileHeader, err := c.FormFile("statement")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "statement file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to open upload", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer f.Close()

	result, err := h.svc.ImportStatement(ctx, chat.HashUserID(userID), fileHeader.Filename, f)
	if err != nil {
		h.logger.WarnContext(ctx, "statement import failed",
			slog.String("file", fileHeader.Filename), slog.Any("error", err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleListStatements returns the archived uploads for a user.
func (h *Handler) HandleListStatements(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	files, err := h.svc.ListStatements(c.Request.Context(), chat.HashUserID(userID))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "failed to list statements", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statements": files})
}

// HandleDownloadStatement streams one archived statement back.
func (h *Handler) HandleDownloadStatement(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement id"})
		return
	}

	info, r, err := h.svc.OpenStatement(c.Request.Context(), chat.HashUserID(userID), fileID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "statement not found"})
		return
	}
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "failed to open statement", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer r.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", info.Name),
	}
	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, r, extraHeaders)
}

// HandleDeleteStatement removes an archived statement file.
func (h *Handler) HandleDeleteStatement(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement id"})
		return
	}

	err = h.svc.DeleteStatement(c.Request.Context(), chat.HashUserID(userID), fileID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "statement not found"})
		return
	}
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "failed to delete statement", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}
