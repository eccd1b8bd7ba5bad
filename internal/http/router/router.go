package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deskbridge/relay/internal/http/handler/webhook"
)

func SetupRoutes(router *gin.Engine, zendeskHandler *webhook.ZendeskWebhookHandler, chatwootHandler *webhook.ChatwootWebhookHandler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	hooks := router.Group("/service-api-webhook")
	{
		hooks.POST("/zendesk-webhook", zendeskHandler.HandleEvent)
		hooks.POST("/chatwoot-webhook", chatwootHandler.HandleEvent)
	}
}
