package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vivaahlink/vivaah-backend/internal/handlers"
)

type RouterConfig struct {
	WebhookHandler *handlers.WebhookHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	// WhatsApp Cloud API webhook
	router.GET("/webhook", cfg.WebhookHandler.Verify)
	router.POST("/webhook", cfg.WebhookHandler.Receive)

	return router
}
