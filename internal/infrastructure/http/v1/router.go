// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"matcat/internal/infrastructure/http/v1/handlers"
	"matcat/internal/infrastructure/http/v1/middleware"
	"matcat/internal/infrastructure/observability"
	"matcat/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Database backs readiness and info probes.
	Database handlers.Database

	// Logger for request logging
	Logger *logger.Logger

	Materials  handlers.MaterialService
	Categories handlers.CategoryService

	// Metrics records request latency; nil disables it.
	Metrics *observability.Metrics

	// MetricsHandler is served on MetricsPath when both are set.
	MetricsHandler http.Handler
	MetricsPath    string

	// MaxPageSize caps the size query parameter.
	MaxPageSize int

	AppName string
	Version string

	// Debug switches gin to debug mode.
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())

	if cfg.Database != nil {
		healthHandler := handlers.NewHealthHandler(cfg.Database, cfg.AppName, cfg.Version)
		health := router.Group("/health")
		{
			health.GET("/live", healthHandler.Live)
			health.GET("/ready", healthHandler.Ready)
			health.GET("/info", healthHandler.Info)
		}
	}

	if cfg.MetricsHandler != nil && cfg.MetricsPath != "" {
		router.GET(cfg.MetricsPath, gin.WrapH(cfg.MetricsHandler))
	}

	v1 := router.Group("/api/v1")
	registerCatalogRoutes(v1, cfg)

	return router
}

// registerCatalogRoutes registers material and category endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler(cfg.MaxPageSize)

	// --- MATERIALS ---
	materials := handlers.NewMaterialHandler(baseHandler, cfg.Materials)
	RegisterCatalogRoutes(rg.Group("/materials"), materials)

	// --- CATEGORIES ---
	categories := handlers.NewCategoryHandler(baseHandler, cfg.Categories)
	categoryGroup := rg.Group("/categories")
	{
		categoryGroup.GET("", categories.List)
		categoryGroup.GET("/:id/materials", materials.ListByCategory)
	}
}
