package webhook

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
)

type ChatwootWebhookHandler struct {
	director Director
}

func NewChatwootWebhookHandler(director Director) *ChatwootWebhookHandler {
	return &ChatwootWebhookHandler{director: director}
}

// HandleEvent acks immediately and hands the payload to the chat director
// on a fresh goroutine, detached from the request context.
func (h *ChatwootWebhookHandler) HandleEvent(c *gin.Context) {
	payload := parsePayload(c)

	if kind, _ := payload["event"].(string); kind == "message_created" {
		slog.InfoContext(c.Request.Context(), "received chatwoot message webhook", "body", payload)
	}

	ack(c)

	go h.director.Handle(context.WithoutCancel(c.Request.Context()), payload)
}
