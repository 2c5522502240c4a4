package catalog_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"matcat/internal/domain/catalogs/category"
	"matcat/internal/infrastructure/storage/postgres"
)

const categoryTable = "material_categories"

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	*BaseCatalogRepo[*category.Category]
}

var _ category.Repository = (*CategoryRepo)(nil)

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txm *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			categoryTable,
			category.EntityName,
			postgres.ExtractDBColumns[category.Category](),
			func() *category.Category { return new(category.Category) },
		),
	}
}

// ListAll returns every category ordered by id.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]*category.Category, error) {
	sql, args, err := r.baseSelect().OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*category.Category
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}
