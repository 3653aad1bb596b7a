package config

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SharedConfig configuración de los middlewares compartidos
type SharedConfig struct {
	MetricsEnabled  bool
	MetricsGatherer prometheus.Gatherer
	Version         string
	// Rutas que no se registran en el access log
	QuietPaths []string
}

// DefaultSharedConfig devuelve una configuración por defecto
func DefaultSharedConfig() SharedConfig {
	return SharedConfig{
		MetricsGatherer: prometheus.DefaultGatherer,
		Version:         "dev",
		QuietPaths:      []string{"/health", "/metrics"},
	}
}

// SetupSharedMiddleware configura los middlewares y endpoints compartidos
func SetupSharedMiddleware(router *gin.Engine, logger *zap.Logger, cfg SharedConfig) {
	router.Use(accessLog(logger, cfg.QuietPaths))
	router.Use(gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", ctx.Request.URL.Path))
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}))

	health := func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": cfg.Version,
		})
	}
	router.GET("/health", health)
	router.GET("/api/v1/health", health)

	if cfg.MetricsEnabled {
		handler := promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{})
		router.GET("/metrics", gin.WrapH(handler))
		logger.Info("/metrics endpoint registered")
	} else {
		logger.Info("prometheus metrics disabled")
	}
}

// accessLog registra cada request a través de zap
func accessLog(logger *zap.Logger, quiet []string) gin.HandlerFunc {
	skip := make(map[string]bool, len(quiet))
	for _, p := range quiet {
		skip[p] = true
	}
	return func(ctx *gin.Context) {
		started := time.Now()
		ctx.Next()

		if skip[ctx.Request.URL.Path] {
			return
		}
		logger.Info("request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(started)),
			zap.String("client_ip", ctx.ClientIP()))
	}
}
