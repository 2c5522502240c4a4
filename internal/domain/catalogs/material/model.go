// Package material provides the material catalog: materials grouped into
// categories, each carrying a code allocated from its category prefix.
package material

import (
	"context"
	"strings"

	"matcat/internal/core/apperror"
	"matcat/internal/core/entity"
	"matcat/internal/core/id"
	"matcat/internal/domain/catalogs/category"
)

// EntityName is used in NOT_FOUND errors.
const EntityName = "material"

// Material is a catalog item. Code has the form <PREFIX>-<seq>.
type Material struct {
	entity.Catalog

	// CategoryID references material_categories.id
	CategoryID id.ID `db:"category_id" json:"categoryId"`
}

// NewMaterial creates a new Material without a code.
func NewMaterial(name string, categoryID id.ID) *Material {
	return &Material{
		Catalog:    entity.NewCatalog("", name),
		CategoryID: categoryID,
	}
}

// Validate implements entity.Validatable interface.
func (m *Material) Validate(ctx context.Context) error {
	if err := m.Catalog.Validate(ctx); err != nil {
		return err
	}
	if m.CategoryID <= 0 {
		return apperror.NewValidation("materialCategoryId must be positive").
			WithDetail("field", "materialCategoryId")
	}
	return nil
}

// Input carries the caller-supplied fields of create and update.
type Input struct {
	Name       string
	CategoryID id.ID
}

// Validate checks the caller-supplied fields.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if in.CategoryID <= 0 {
		return apperror.NewValidation("materialCategoryId must be positive").
			WithDetail("field", "materialCategoryId")
	}
	return nil
}

// View is the read model returned to callers: the material with its category name.
type View struct {
	ID           id.ID
	Name         string
	Code         string
	CategoryID   id.ID
	CategoryName string
}

// NewView assembles a View. A nil category leaves CategoryName empty.
func NewView(m *Material, c *category.Category) View {
	v := View{
		ID:         m.ID,
		Name:       m.Name,
		Code:       m.Code,
		CategoryID: m.CategoryID,
	}
	if c != nil {
		v.CategoryName = c.Name
	}
	return v
}
