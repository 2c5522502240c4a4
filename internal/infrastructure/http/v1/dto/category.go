package dto

import (
	"matcat/internal/core/id"
	"matcat/internal/domain/catalogs/category"
)

// CategoryResponse is the API representation of a category.
type CategoryResponse struct {
	ID   id.ID  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// FromCategory creates CategoryResponse from a category.
func FromCategory(c *category.Category) CategoryResponse {
	return CategoryResponse{
		ID:   c.ID,
		Name: c.Name,
		Code: c.Code,
	}
}

// FromCategories maps a category list.
func FromCategories(items []*category.Category) ListResponse[CategoryResponse] {
	out := make([]CategoryResponse, 0, len(items))
	for _, c := range items {
		out = append(out, FromCategory(c))
	}
	return ListResponse[CategoryResponse]{Items: out}
}
