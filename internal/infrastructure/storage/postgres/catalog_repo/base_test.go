package catalog_repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matcat/internal/core/apperror"
	"matcat/internal/domain"
	"matcat/internal/domain/catalogs/material"
	"matcat/internal/domain/filter"
	"matcat/internal/infrastructure/storage/postgres"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alu", "alu"},
		{"50%", `50\%`},
		{"a_b", `a\_b`},
		{`c:\tmp`, `c:\\tmp`},
		{`%_\`, `\%\_\\`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeLike(tt.in), tt.in)
	}
}

func TestMaterialRepo_ListQuery(t *testing.T) {
	repo := NewMaterialRepo(nil)

	t.Run("search matches name or code literally", func(t *testing.T) {
		q, err := repo.listQuery(domain.ListFilter{Search: "50%"})
		require.NoError(t, err)

		sql, args, err := q.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, code, name, category_id FROM materials WHERE (name ILIKE $1 OR code ILIKE $2)", sql)
		assert.Equal(t, []any{`%50\%%`, `%50\%%`}, args)
	})

	t.Run("category filter", func(t *testing.T) {
		q, err := repo.listQuery(domain.ListFilter{
			AdvancedFilters: []filter.Item{filter.Eq("category_id", int64(3))},
		})
		require.NoError(t, err)

		sql, args, err := q.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, code, name, category_id FROM materials WHERE category_id = $1", sql)
		assert.Equal(t, []any{int64(3)}, args)
	})

	t.Run("unknown column is rejected", func(t *testing.T) {
		_, err := repo.listQuery(domain.ListFilter{
			AdvancedFilters: []filter.Item{filter.Eq("password", "x")},
		})
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("unsupported operator is rejected", func(t *testing.T) {
		_, err := repo.listQuery(domain.ListFilter{
			AdvancedFilters: []filter.Item{{Field: "name", Operator: "regex", Value: ".*"}},
		})
		assert.True(t, apperror.IsValidation(err))
	})
}

func TestMaterialRepo_LatestCodeQuery(t *testing.T) {
	repo := NewMaterialRepo(nil)

	sql, args, err := repo.latestCodeQuery(7).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT code FROM materials WHERE category_id = $1 ORDER BY id DESC LIMIT 1", sql)
	assert.Equal(t, []any{int64(7)}, args)
}

func TestMaterialRepo_InsertQuery(t *testing.T) {
	repo := NewMaterialRepo(nil)

	t.Run("identity column assigns the id", func(t *testing.T) {
		m := material.NewMaterial("Steel Bar", 1)
		m.Code = "MTL-0001"

		q, err := repo.insertQuery(m)
		require.NoError(t, err)
		sql, args, err := q.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO materials (category_id,code,name) VALUES ($1,$2,$3) RETURNING id", sql)
		assert.Equal(t, []any{int64(1), "MTL-0001", "Steel Bar"}, args)
	})

	t.Run("explicit id is kept", func(t *testing.T) {
		m := material.NewMaterial("Steel Bar", 1)
		m.ID = 40
		m.Code = "MTL-0040"

		q, err := repo.insertQuery(m)
		require.NoError(t, err)
		sql, _, err := q.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO materials (category_id,code,id,name) VALUES ($1,$2,$3,$4) RETURNING id", sql)
	})
}

func TestMaterialRepo_UpdateQuery(t *testing.T) {
	repo := NewMaterialRepo(nil)
	m := material.NewMaterial("Copper Wire", 2)
	m.ID = 5
	m.Code = "PLS-0011"

	q, err := repo.updateQuery(m)
	require.NoError(t, err)
	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE materials SET category_id = $1, code = $2, name = $3 WHERE id = $4", sql)
	assert.Equal(t, []any{int64(2), "PLS-0011", "Copper Wire", int64(5)}, args)
}

func TestParseOrderBy(t *testing.T) {
	repo := NewCategoryRepo(nil)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "id ASC", false},
		{"name", "name ASC", false},
		{"+code", "code ASC", false},
		{"-id", "id DESC", false},
		{"-", "", true},
		{"name; DROP TABLE x", "", true},
	}
	for _, tt := range tests {
		got, err := repo.parseOrderBy(tt.in)
		if tt.wantErr {
			assert.True(t, apperror.IsValidation(err), tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestMaterialRepo_CopyRows(t *testing.T) {
	steel := material.NewMaterial("Steel", 1)
	steel.Code = "MTL-0001"
	pvc := material.NewMaterial("PVC", 2)
	pvc.Code = "PLS-0001"

	assert.Equal(t, [][]any{
		{"Steel", "MTL-0001", int64(1)},
		{"PVC", "PLS-0001", int64(2)},
	}, copyRows([]*material.Material{steel, pvc}))
}

func TestMaterialRepo_CreateManyRequiresTransaction(t *testing.T) {
	repo := NewMaterialRepo(nil)

	_, err := repo.CreateMany(context.Background(), []*material.Material{material.NewMaterial("Steel", 1)})
	assert.ErrorIs(t, err, postgres.ErrNoTransaction)
}
