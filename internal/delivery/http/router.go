package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Pinger checks persistence-layer liveness
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	TradeHandler *TradeHandler
	DB           Pinger
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// The stream stays open for the life of the client; logging
			// it per-request is useless noise. Health checks likewise.
			path := c.Request().URL.Path
			return path == "/api/trade/stream" || path == "/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		dbStatus := "healthy"
		if config.DB == nil || config.DB.Ping(ctx) != nil {
			dbStatus = "unhealthy"
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"service":   "tradewire",
			"database":  dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Signal ingress + history
	e.POST("/webhook/trade", config.TradeHandler.PostSignal)
	e.GET("/webhook/trade", config.TradeHandler.GetHistory)

	// Live trade event stream
	e.GET("/api/trade/stream", config.TradeHandler.Stream)
}
