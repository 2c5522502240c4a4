package material

import (
	"context"

	"matcat/internal/core/id"
	"matcat/internal/domain"
)

// Repository defines material persistence.
type Repository interface {
	domain.CatalogRepository[*Material]

	// LatestCodeInCategory returns the code of the most recently inserted
	// material in the category (highest id). ok is false for an empty category.
	LatestCodeInCategory(ctx context.Context, categoryID id.ID) (code string, ok bool, err error)

	// Count returns the total number of materials.
	Count(ctx context.Context) (int64, error)
}
