// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// CatalogRouteHandler defines the interface for catalog handlers.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// CatalogSearchHandler is an optional interface for catalogs that support keyword search.
type CatalogSearchHandler interface {
	Search(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// If the handler also implements CatalogSearchHandler, GET /search is registered too.
//
// Usage:
//
//	handler := handlers.NewMaterialHandler(baseHandler, cfg.Materials)
//	RegisterCatalogRoutes(api.Group("/materials"), handler)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	if searcher, ok := handler.(CatalogSearchHandler); ok {
		group.GET("/search", searcher.Search)
	}
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
}
