package category

import (
	"context"

	"matcat/internal/core/id"
	"matcat/internal/domain"
)

// Repository defines category persistence.
type Repository interface {
	domain.CatalogRepository[*Category]

	// GetByIDs returns the categories that exist among ids, in any order.
	GetByIDs(ctx context.Context, ids []id.ID) ([]*Category, error)

	// ListAll returns every category ordered by id.
	ListAll(ctx context.Context) ([]*Category, error)
}
