package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"matcat/internal/domain/catalogs/category"
	"matcat/internal/infrastructure/http/v1/dto"
)

// CategoryService lists categories for the HTTP layer.
type CategoryService interface {
	ListAll(ctx context.Context) ([]*category.Category, error)
}

// CategoryHandler handles category HTTP requests.
type CategoryHandler struct {
	*BaseHandler
	service CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(base *BaseHandler, service CategoryService) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /categories.
func (h *CategoryHandler) List(c *gin.Context) {
	items, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCategories(items))
}
