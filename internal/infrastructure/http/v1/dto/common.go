// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"matcat/internal/domain"
)

// --- Pagination ---

// Pagination defaults.
const (
	DefaultPage     = 0
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PaginationRequest contains zero-based pagination parameters.
// Absent values take the defaults; invalid ones are rejected by the service.
type PaginationRequest struct {
	Page *int `form:"page"`
	Size *int `form:"size"`
}

// ToPageRequest applies defaults and caps size at maxSize.
func (p PaginationRequest) ToPageRequest(maxSize int) domain.PageRequest {
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	req := domain.PageRequest{Page: DefaultPage, Size: DefaultPageSize}
	if p.Page != nil {
		req.Page = *p.Page
	}
	if p.Size != nil {
		req.Size = *p.Size
	}
	if req.Size > maxSize {
		req.Size = maxSize
	}
	return req
}

// PageResponse is one page of results.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPageResponse maps a domain page with fn.
func NewPageResponse[S, T any](page domain.Page[S], fn func(S) T) PageResponse[T] {
	content := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		content = append(content, fn(item))
	}
	return PageResponse[T]{
		Content:       content,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
	}
}

// --- List Response ---

// ListResponse wraps an unpaginated list.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
