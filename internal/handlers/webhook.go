package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vivaahlink/vivaah-backend/internal/dedup"
	"github.com/vivaahlink/vivaah-backend/internal/logger"
	"github.com/vivaahlink/vivaah-backend/internal/processor"
	"github.com/vivaahlink/vivaah-backend/internal/wa"
)

// WebhookHandler terminates the WhatsApp Cloud API webhook: GET for the
// one-time subscription handshake, POST for inbound messages.
type WebhookHandler struct {
	log         *logger.Logger
	verifyToken string
	cache       dedup.Cache
	processor   *processor.Processor
}

func NewWebhookHandler(baseLog *logger.Logger, verifyToken string, cache dedup.Cache, proc *processor.Processor) *WebhookHandler {
	return &WebhookHandler{
		log:         baseLog.With("handler", "WebhookHandler"),
		verifyToken: verifyToken,
		cache:       cache,
		processor:   proc,
	}
}

func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	h.log.Info("webhook verification request", "mode", mode)

	if mode == "subscribe" && token == h.verifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	c.String(http.StatusForbidden, "Forbidden")
}

// Receive unwraps the webhook envelope and runs the message pipeline. The
// transport expects a 200 regardless of business outcome; the status field
// tells it apart.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload wa.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.log.Warn("malformed webhook payload", "error", err)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	msg := payload.FirstMessage()
	if msg == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	ctx := c.Request.Context()

	if h.cache.Seen(ctx, msg.ID) {
		h.log.Info("duplicate message skipped", "messageId", msg.ID)
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}
	h.cache.Mark(ctx, msg.ID)

	if err := h.processor.Process(ctx, msg); err != nil {
		h.log.Error("error processing message", "messageId", msg.ID, "from", msg.From, "error", err)
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "Processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
