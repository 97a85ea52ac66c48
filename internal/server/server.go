// Package server wires the gin engine: middleware, routes and the contact
// dispatcher with its three sinks, all built from one explicit Config.
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clearstack/consulting-api/internal/config"
	"github.com/clearstack/consulting-api/internal/contact"
	"github.com/clearstack/consulting-api/internal/handlers"
	"github.com/clearstack/consulting-api/internal/middleware"
	"github.com/clearstack/consulting-api/internal/sink"
)

// New builds the HTTP engine. The dispatcher's sink order (email, record,
// webhook) fixes the order of the outcomes in every contact response.
func New(cfg *config.Config, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	dispatcher := contact.NewDispatcher(log,
		sink.NewEmailSink(cfg.SMTP, cfg.Resend, log),
		sink.NewRecordSink(cfg.Notion, log),
		sink.NewWebhookSink(cfg.Webhook, log),
	)

	return NewWithDispatcher(cfg, log, dispatcher)
}

// NewWithDispatcher builds the engine around an existing dispatcher. Tests
// use it to substitute fake sinks.
func NewWithDispatcher(cfg *config.Config, log *zap.Logger, dispatcher *contact.Dispatcher) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(staticCORSHeaders(cfg.Server))
	router.Use(configureCORS(cfg.Server))
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware())

	healthHandler := handlers.NewHealthHandler()
	router.GET("/health", healthHandler.Health)

	contactHandler := handlers.NewContactHandler(dispatcher, log)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/contact", contactHandler.SubmitContact)
		v1.OPTIONS("/contact", contactHandler.HandleOptions)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}

// staticCORSHeaders writes the permissive headers on every response. The
// cors middleware only answers requests that carry an Origin header, but
// non-browser clients without one still get the same headers.
func staticCORSHeaders(cfg config.ServerConfig) gin.HandlerFunc {
	if !allowsAllOrigins(cfg) {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Next()
	}
}

func allowsAllOrigins(cfg config.ServerConfig) bool {
	if len(cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// configureCORS returns a configured CORS middleware. The contact endpoint
// is called cross-origin from the marketing site, so the default policy is
// wide open: any origin, POST and OPTIONS, Content-Type.
func configureCORS(cfg config.ServerConfig) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	if allowsAllOrigins(cfg) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}

	corsConfig.AllowMethods = []string{"POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", middleware.CorrelationIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.CorrelationIDHeader}
	// Preflights answer 200 rather than the package default 204.
	corsConfig.OptionsResponseStatusCode = http.StatusOK

	return cors.New(corsConfig)
}
