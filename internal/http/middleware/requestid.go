package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deskbridge/relay/common/id"
	"github.com/deskbridge/relay/common/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID assigns a snowflake id to each request and carries it in the
// log-field context, so a webhook ack and its background handling task
// share one correlation id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strconv.FormatInt(id.New(), 10)

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
			RequestID: logger.Ptr(rid),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, rid)

		c.Next()
	}
}
