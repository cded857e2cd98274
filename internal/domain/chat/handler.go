package chat

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler exposes the chat pipeline over HTTP. Messaging platforms POST
// inbound messages to /webhook and render the reply field back to the user.
type Handler struct {
	svc           *Service
	webhookSecret string
	logger        *slog.Logger
}

// NewHandler creates the webhook handler. secret is optional; when set,
// requests must carry it in the X-Webhook-Token header.
func NewHandler(svc *Service, secret string, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, webhookSecret: secret, logger: logger}
}

type webhookRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	MessageID string `json:"message_id" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

type webhookResponse struct {
	Reply       string   `json:"reply"`
	Intent      string   `json:"intent"`
	Confidence  float64  `json:"confidence"`
	ReasonCodes []string `json:"reason_codes,omitempty"`
}

// RegisterRoutes mounts the chat endpoints on the router group.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/webhook", h.HandleWebhook)
}

// HandleWebhook processes one inbound chat message and returns the reply.
func (h *Handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	if h.webhookSecret != "" {
		token := c.GetHeader("X-Webhook-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookSecret)) != 1 {
			h.logger.WarnContext(ctx, "webhook token rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
	}

	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WarnContext(ctx, "webhook payload rejected", slog.Any("error", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id, message_id and text are required"})
		return
	}

	out, err := h.svc.HandleMessage(ctx, Inbound{
		UserID:    req.UserID,
		MessageID: req.MessageID,
		Text:      req.Text,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "message handling failed",
			slog.String("message_id", req.MessageID), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, webhookResponse{
		Reply:       out.Reply,
		Intent:      string(out.Intent),
		Confidence:  out.Confidence,
		ReasonCodes: out.ReasonCodes,
	})
}
