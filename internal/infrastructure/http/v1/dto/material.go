package dto

import (
	"matcat/internal/core/id"
	"matcat/internal/domain/catalogs/material"
)

// MaterialRequest is the body of create and update.
type MaterialRequest struct {
	Name               string `json:"name"`
	MaterialCategoryID id.ID  `json:"materialCategoryId"`
}

// ToInput converts the request to service input.
func (r MaterialRequest) ToInput() material.Input {
	return material.Input{
		Name:       r.Name,
		CategoryID: r.MaterialCategoryID,
	}
}

// MaterialResponse is the API representation of a material.
type MaterialResponse struct {
	ID                   id.ID  `json:"id"`
	Name                 string `json:"name"`
	MaterialCode         string `json:"materialCode"`
	MaterialCategoryID   id.ID  `json:"materialCategoryId"`
	MaterialCategoryName string `json:"materialCategoryName"`
}

// FromMaterialView creates MaterialResponse from a service view.
func FromMaterialView(v material.View) MaterialResponse {
	return MaterialResponse{
		ID:                   v.ID,
		Name:                 v.Name,
		MaterialCode:         v.Code,
		MaterialCategoryID:   v.CategoryID,
		MaterialCategoryName: v.CategoryName,
	}
}
