package entity

import (
	"context"
	"strings"

	"matcat/internal/core/apperror"
)

// Catalog is the base type for reference data: material categories and materials.
type Catalog struct {
	BaseEntity

	// Code is the human-readable identifier (category prefix or material code)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new, not yet persisted Catalog.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		Code: code,
		Name: name,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	// Code is allocated by the service for materials, so it is not checked here.
	return nil
}
