package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"matcat/internal/core/id"
	"matcat/internal/domain"
	"matcat/internal/domain/catalogs/material"
	"matcat/internal/infrastructure/http/v1/dto"
)

// MaterialService is the material catalog as seen by the HTTP layer.
type MaterialService interface {
	List(ctx context.Context, req domain.PageRequest) (domain.Page[material.View], error)
	Get(ctx context.Context, materialID id.ID) (material.View, error)
	Create(ctx context.Context, in material.Input) (material.View, error)
	Update(ctx context.Context, materialID id.ID, in material.Input) (material.View, error)
	Delete(ctx context.Context, materialID id.ID) error
	ListByCategory(ctx context.Context, categoryID id.ID, req domain.PageRequest) (domain.Page[material.View], error)
	Search(ctx context.Context, keyword *string, req domain.PageRequest) (domain.Page[material.View], error)
}

// MaterialHandler handles material HTTP requests.
type MaterialHandler struct {
	*BaseHandler
	service MaterialService
}

// NewMaterialHandler creates a new material handler.
func NewMaterialHandler(base *BaseHandler, service MaterialService) *MaterialHandler {
	return &MaterialHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /materials.
func (h *MaterialHandler) List(c *gin.Context) {
	req, ok := h.BindPage(c)
	if !ok {
		return
	}

	page, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewPageResponse(page, dto.FromMaterialView))
}

// Search handles GET /materials/search.
// A missing keyword lists all materials.
func (h *MaterialHandler) Search(c *gin.Context) {
	req, ok := h.BindPage(c)
	if !ok {
		return
	}

	var keyword *string
	if v, present := c.GetQuery("keyword"); present {
		keyword = &v
	}

	page, err := h.service.Search(c.Request.Context(), keyword, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewPageResponse(page, dto.FromMaterialView))
}

// Get handles GET /materials/:id.
func (h *MaterialHandler) Get(c *gin.Context) {
	materialID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	view, err := h.service.Get(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMaterialView(view))
}

// Create handles POST /materials.
func (h *MaterialHandler) Create(c *gin.Context) {
	var req dto.MaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}

	view, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromMaterialView(view))
}

// Update handles PUT /materials/:id.
func (h *MaterialHandler) Update(c *gin.Context) {
	materialID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.MaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}

	view, err := h.service.Update(c.Request.Context(), materialID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMaterialView(view))
}

// Delete handles DELETE /materials/:id.
func (h *MaterialHandler) Delete(c *gin.Context) {
	materialID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), materialID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// ListByCategory handles GET /categories/:id/materials.
func (h *MaterialHandler) ListByCategory(c *gin.Context) {
	categoryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	req, ok := h.BindPage(c)
	if !ok {
		return
	}

	page, err := h.service.ListByCategory(c.Request.Context(), categoryID, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewPageResponse(page, dto.FromMaterialView))
}
