package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxPayloadSize caps inbound webhook bodies (1 MB).
const maxPayloadSize = 1 << 20

// Director is one direction of the relay. Handle runs the full chain and
// never returns an error; the webhook sender has already been acked.
type Director interface {
	Handle(ctx context.Context, payload map[string]any)
}

// parsePayload reads the request body as a JSON object. Any malformed or
// absent body yields an empty map; the directors treat incomplete payloads
// as silent drops, so the ack is unconditional either way.
func parsePayload(c *gin.Context) map[string]any {
	payload := map[string]any{}
	if c.Request.Body == nil {
		return payload
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadSize))
	if err != nil {
		return payload
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return map[string]any{}
	}
	return payload
}

// ack writes the fixed success response the platforms expect, regardless
// of what the background handling will do.
func ack(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
