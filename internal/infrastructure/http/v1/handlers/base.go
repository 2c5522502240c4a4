package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"matcat/internal/core/apperror"
	"matcat/internal/core/id"
	"matcat/internal/domain"
	"matcat/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct {
	maxPageSize int
}

// NewBaseHandler creates a new base handler. Page sizes above maxPageSize are capped.
func NewBaseHandler(maxPageSize int) *BaseHandler {
	if maxPageSize <= 0 {
		maxPageSize = dto.MaxPageSize
	}
	return &BaseHandler{maxPageSize: maxPageSize}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindPage reads page and size query parameters.
func (h *BaseHandler) BindPage(c *gin.Context) (domain.PageRequest, bool) {
	var req dto.PaginationRequest
	if !h.BindQuery(c, &req) {
		return domain.PageRequest{}, false
	}
	return req.ToPageRequest(h.maxPageSize), true
}

// ParamID parses a positive integer path parameter.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (id.ID, bool) {
	raw := c.Param(name)
	v, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewInvalidInput(name, raw))
		return 0, false
	}
	return v, true
}

// Error processes error and sends appropriate response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	h.HandleError(c, err)
}

// HandleError registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler (single source of truth).
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
