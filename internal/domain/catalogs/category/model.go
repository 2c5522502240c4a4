// Package category provides material categories.
// A category owns the code prefix used for every material allocated in it.
package category

import (
	"context"
	"strings"

	"matcat/internal/core/apperror"
	"matcat/internal/core/entity"
)

// EntityName is used in NOT_FOUND errors.
const EntityName = "category"

// Category is a material category. Code holds the prefix (e.g. "MTL").
type Category struct {
	entity.Catalog
}

// NewCategory creates a new, not yet persisted Category.
func NewCategory(name, prefix string) *Category {
	return &Category{
		Catalog: entity.NewCatalog(prefix, name),
	}
}

// Prefix returns the code prefix of the category.
func (c *Category) Prefix() string {
	return c.Code
}

// Validate implements entity.Validatable interface.
func (c *Category) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(c.Code) == "" {
		return apperror.NewValidation("prefix is required").
			WithDetail("field", "code")
	}
	return nil
}
