// Package httpapi wires the keepalive HTTP server: a health endpoint probed
// by the hosting platform and the Prometheus metrics endpoint. The bot's
// real transport is Telegram long polling; this surface exists because the
// deployment target requires an open port to consider the process alive.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/dizzymate/aura-bot/internal/http/middleware"
)

// NewRouter builds the Gin engine with the shared middleware chain and the
// health/metrics endpoints.
func NewRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())

	r.GET("/healthz", healthz(db))
	r.HEAD("/healthz", healthz(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// healthz reports liveness. The DB ping covers the only dependency the
// process has; a failed ping yields 503 so the platform restarts us.
func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
