// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/selfhydro/selfhydro-api/internal/api/handlers"
	"github.com/selfhydro/selfhydro-api/internal/api/middleware"
	"github.com/selfhydro/selfhydro-api/internal/metrics"
	"github.com/selfhydro/selfhydro-api/internal/service"
)

type Services struct {
	SensorService *service.SensorService
	ImageService  *service.ImageService
	Metrics       *metrics.Metrics
	Env           string
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	var m *metrics.Metrics
	if services != nil {
		m = services.Metrics
	}

	// Add middleware
	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.Metrics(m),
	)
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		resp := gin.H{"status": "ok"}
		if services != nil && services.Env != "" {
			resp["env"] = services.Env
		}
		c.JSON(http.StatusOK, resp)
	})
	if m != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	if services != nil {
		if services.SensorService != nil {
			sensorHandler := handlers.NewSensorHandler(services.SensorService)
			sensorGroup := router.Group("/sensor")
			{
				sensorGroup.GET("/latest", sensorHandler.GetLatest)
				sensorGroup.GET("/history", sensorHandler.GetHistory)
			}
		}

		if services.ImageService != nil {
			imageHandler := handlers.NewImageHandler(services.ImageService)
			imageGroup := router.Group("/images")
			{
				imageGroup.GET("", imageHandler.ListImages)
				imageGroup.GET("/:name/urls", imageHandler.GetImageURLs)
				imageGroup.GET("/:name/stream", imageHandler.StreamImage)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
