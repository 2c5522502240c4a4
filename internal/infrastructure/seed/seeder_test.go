package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matcat/internal/core/apperror"
	"matcat/internal/core/entity"
	"matcat/internal/domain"
	"matcat/internal/domain/catalogs/category"
	"matcat/internal/domain/catalogs/material"
	"matcat/internal/infrastructure/storage/memory"
)

type countingRecorder struct {
	categories, materials int
}

func (r *countingRecorder) RecordSeeded(categories, materials int) {
	r.categories += categories
	r.materials += materials
}

func testConfig() Config {
	return Config{
		DefaultPrefix: "CAT",
		CategoryPrefixes: map[int64]string{
			1: "MTL",
			2: "PLS",
			3: "ELC",
			4: "CHM",
		},
	}
}

func TestConfig_PrefixFor(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "MTL", cfg.PrefixFor(1))
	assert.Equal(t, "CHM", cfg.PrefixFor(4))
	assert.Equal(t, "CAT", cfg.PrefixFor(9))
	assert.Equal(t, DefaultPrefix, Config{}.PrefixFor(9))
}

func TestSeeder_Import_Header(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rec := &countingRecorder{}
	s := New(store.Categories(), store.Materials(), nil, testConfig(), rec)

	csv := "material_code,material_name,category_id,category_name,id\n" +
		"MTL-0001,Steel Bar,1,Metals,10\n" +
		"PLS-0007,PVC Pipe,2,Plastics,11\n" +
		"MTL-0002,\"Copper Wire, 2mm\",1,Metals,12\n" +
		"X-1,Oak Board,7,Wood,13\n"

	res, err := s.Import(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, Result{Categories: 3, Materials: 4}, res)
	assert.Equal(t, 3, rec.categories)
	assert.Equal(t, 4, rec.materials)

	cats, err := store.Categories().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "Metals", cats[0].Name)
	assert.Equal(t, "MTL", cats[0].Code)
	assert.Equal(t, "PLS", cats[1].Code)
	assert.Equal(t, "CAT", cats[2].Code)

	list, err := store.Materials().List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list.Items, 4)
	assert.Equal(t, "Copper Wire, 2mm", list.Items[2].Name)
	// Codes are stored verbatim.
	assert.Equal(t, "X-1", list.Items[3].Code)
	assert.Equal(t, cats[2].ID, list.Items[3].CategoryID)
}

func TestSeeder_Import_PositionalLayout(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s := New(store.Categories(), store.Materials(), nil, testConfig(), nil)

	csv := "a,b,c,d,e\n" +
		"1,3,Electrical,ELC-0001,Cable\n" +
		"2,3,Electrical,ELC-0002,Switch\n"

	res, err := s.Import(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Categories)
	assert.Equal(t, 2, res.Materials)

	cats, _ := store.Categories().ListAll(ctx)
	require.Len(t, cats, 1)
	assert.Equal(t, "ELC", cats[0].Code)

	code, ok, err := store.Materials().LatestCodeInCategory(ctx, cats[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ELC-0002", code)
}

func TestSeeder_Import_ReusesExistingCategory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	existing := &category.Category{Catalog: entity.Catalog{BaseEntity: entity.BaseEntity{ID: 1}, Code: "STL", Name: "Steel"}}
	require.NoError(t, store.Categories().Create(ctx, existing))

	s := New(store.Categories(), store.Materials(), nil, testConfig(), nil)
	res, err := s.Import(ctx, strings.NewReader("id,category_id,category_name,code,name\n1,1,Metals,STL-0001,Beam\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Categories)

	m, err := store.Materials().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.CategoryID)
}

func TestSeeder_Import_OutOfOrderSourceIDs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s := New(store.Categories(), store.Materials(), nil, testConfig(), nil)

	csv := "id,category_id,category_name,code,name\n" +
		"1,3,Electrical,ELC-0001,Cable\n" +
		"2,1,Metals,MTL-0001,Steel Bar\n"
	res, err := s.Import(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, Result{Categories: 2, Materials: 2}, res)

	all, err := store.Categories().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ELC", all[0].Code)
	assert.Equal(t, "MTL", all[1].Code)

	steel, err := store.Materials().GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, all[1].ID, steel.CategoryID)
}

func TestSeeder_Import_BadRows(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		row  string
	}{
		{"non-integer category id", "id,category_id,category_name,code,name\n1,x,Metals,MTL-0001,Steel\n", "row 2"},
		{"non-integer source id", "id,category_id,category_name,code,name\n1,1,Metals,MTL-0001,Steel\nz,1,Metals,MTL-0002,Iron\n", "row 3"},
		{"too few columns", "id,category_id,category_name,code,name\n1,1,Metals\n", "row 2"},
		{"blank name", "id,category_id,category_name,code,name\n1,1,Metals,MTL-0001,  \n", "row 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			s := New(store.Categories(), store.Materials(), nil, testConfig(), nil)

			_, err := s.Import(context.Background(), strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.row)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestSeeder_Import_EmptyFile(t *testing.T) {
	store := memory.NewStore()
	s := New(store.Categories(), store.Materials(), nil, testConfig(), nil)

	res, err := s.Import(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "materials.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,category_id,category_name,code,name\n1,1,Metals,MTL-0001,Steel\n"), 0o600))

	cfg := testConfig()
	cfg.File = path

	store := memory.NewStore()
	s := New(store.Categories(), store.Materials(), nil, cfg, nil)

	res, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Materials)

	// A populated catalog is left alone.
	res, err = s.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	count, _ := store.Materials().Count(ctx)
	assert.Equal(t, int64(1), count)
}

func TestSeeder_Run_MissingFile(t *testing.T) {
	cfg := testConfig()
	cfg.File = filepath.Join(t.TempDir(), "absent.csv")
	store := memory.NewStore()

	_, err := New(store.Categories(), store.Materials(), nil, cfg, nil).Run(context.Background())
	assert.Error(t, err)
}

// rowByRowMaterials hides CreateMany so the seeder inserts one row at a time.
type rowByRowMaterials struct {
	material.Repository
	creates int
}

func (r *rowByRowMaterials) Create(ctx context.Context, m *material.Material) error {
	r.creates++
	return r.Repository.Create(ctx, m)
}

func TestSeeder_Import_RowByRowFallback(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	materials := &rowByRowMaterials{Repository: store.Materials()}
	s := New(store.Categories(), materials, nil, testConfig(), nil)

	csv := "id,category_id,category_name,code,name\n" +
		"1,1,Metals,MTL-0001,Steel\n" +
		"2,2,Plastics,PLS-0001,Nylon\n"

	res, err := s.Import(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, Result{Categories: 2, Materials: 2}, res)
	assert.Equal(t, 2, materials.creates)
}
