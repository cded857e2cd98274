package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all routes and returns the HTTP handler.
func SetupRouter(deps *Dependencies) http.Handler {
	gin.SetMode(deps.Config.Server.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(deps.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "kharcha"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if deps.DB != nil {
			if err := deps.DB.Pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	deps.ChatHandler.RegisterRoutes(r)
	deps.ImportHandler.RegisterRoutes(r)
	deps.ExportHandler.RegisterRoutes(r)

	return r
}

// requestLogger logs one line per request through the application logger.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}
