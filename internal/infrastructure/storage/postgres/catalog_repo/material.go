package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"matcat/internal/core/apperror"
	"matcat/internal/core/id"
	"matcat/internal/domain/catalogs/material"
	"matcat/internal/infrastructure/storage/postgres"
)

const materialTable = "materials"

// MaterialRepo implements material.Repository.
type MaterialRepo struct {
	*BaseCatalogRepo[*material.Material]
	batch *postgres.BatchInserter
}

var _ material.Repository = (*MaterialRepo)(nil)

// NewMaterialRepo creates a new material repository.
func NewMaterialRepo(txm *postgres.TxManager) *MaterialRepo {
	return &MaterialRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			materialTable,
			material.EntityName,
			postgres.ExtractDBColumns[material.Material](),
			func() *material.Material { return new(material.Material) },
		),
		batch: postgres.NewBatchInserter(txm),
	}
}

// latestCodeQuery selects the code of the highest id in the category.
// Served by the (category_id, id DESC) index.
func (r *MaterialRepo) latestCodeQuery(categoryID id.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select("code").
		From(r.tableName).
		Where(squirrel.Eq{"category_id": categoryID}).
		OrderBy("id DESC").
		Limit(1)
}

// LatestCodeInCategory implements material.Repository.
func (r *MaterialRepo) LatestCodeInCategory(ctx context.Context, categoryID id.ID) (string, bool, error) {
	sql, args, err := r.latestCodeQuery(categoryID).ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build query: %w", err)
	}

	var code string
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("latest code in category %d: %w", categoryID, err)
	}
	return code, true, nil
}

// copyColumns are the columns written by CreateMany; ids come from the identity.
var copyColumns = []string{"name", "code", "category_id"}

// copyRows converts materials to COPY rows in copyColumns order.
func copyRows(items []*material.Material) [][]any {
	rows := make([][]any, 0, len(items))
	for _, m := range items {
		rows = append(rows, []any{m.Name, m.Code, m.CategoryID})
	}
	return rows
}

// CreateMany bulk-inserts materials with COPY. Ids are not read back.
// Must run inside a transaction.
func (r *MaterialRepo) CreateMany(ctx context.Context, items []*material.Material) (int64, error) {
	n, err := r.batch.CopyFromSlice(ctx, r.tableName, copyColumns, copyRows(items))
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, apperror.NewConflict("material references a missing category").WithCause(err)
		}
		return 0, err
	}
	return n, nil
}
