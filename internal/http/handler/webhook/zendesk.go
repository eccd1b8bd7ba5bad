package webhook

import (
	"context"

	"github.com/gin-gonic/gin"
)

type ZendeskWebhookHandler struct {
	director Director
}

func NewZendeskWebhookHandler(director Director) *ZendeskWebhookHandler {
	return &ZendeskWebhookHandler{director: director}
}

// HandleEvent acks immediately and hands the payload to the ticket
// director on a fresh goroutine. The context is detached from the request
// so the task outlives the response; there is no cancellation.
func (h *ZendeskWebhookHandler) HandleEvent(c *gin.Context) {
	payload := parsePayload(c)
	ack(c)

	go h.director.Handle(context.WithoutCancel(c.Request.Context()), payload)
}
