// Package seed imports materials and categories from a CSV file into an
// empty catalog.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"matcat/internal/core/apperror"
	"matcat/internal/core/tx"
	"matcat/internal/domain/catalogs/category"
	"matcat/internal/domain/catalogs/material"
	"matcat/pkg/logger"
)

// DefaultPrefix is used for categories missing from the prefix table.
const DefaultPrefix = "CAT"

// Config configures the seeder.
type Config struct {
	File             string
	DefaultPrefix    string
	CategoryPrefixes map[int64]string // source category id -> prefix
}

// PrefixFor returns the prefix for a source category id.
func (c Config) PrefixFor(sourceCategoryID int64) string {
	if p, ok := c.CategoryPrefixes[sourceCategoryID]; ok && p != "" {
		return p
	}
	if c.DefaultPrefix != "" {
		return c.DefaultPrefix
	}
	return DefaultPrefix
}

// Recorder receives import counts.
type Recorder interface {
	RecordSeeded(categories, materials int)
}

// Result reports what an import created.
type Result struct {
	Categories int
	Materials  int
	Skipped    bool // the catalog already held materials
}

// Seeder loads the CSV into the category and material stores.
type Seeder struct {
	categories category.Repository
	materials  material.Repository
	txm        tx.Manager
	cfg        Config
	recorder   Recorder
}

// New creates a seeder. recorder may be nil.
func New(
	categories category.Repository,
	materials material.Repository,
	txm tx.Manager,
	cfg Config,
	recorder Recorder,
) *Seeder {
	if txm == nil {
		txm = tx.Passthrough{}
	}
	return &Seeder{
		categories: categories,
		materials:  materials,
		txm:        txm,
		cfg:        cfg,
		recorder:   recorder,
	}
}

// Run imports cfg.File unless the catalog already has materials.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	count, err := s.materials.Count(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("count materials: %w", err)
	}
	if count > 0 {
		logger.Info(ctx, "material data already exists, skipping import", "materials", count)
		return Result{Skipped: true}, nil
	}

	f, err := os.Open(s.cfg.File)
	if err != nil {
		return Result{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return s.Import(ctx, f)
}

// Import reads CSV rows from r and stores them in one transaction.
// Material codes are stored as given; the allocator is not involved.
func (s *Seeder) Import(ctx context.Context, r io.Reader) (Result, error) {
	logger.Info(ctx, "importing CSV data", "file", s.cfg.File)

	rows, err := readRows(r)
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		res = Result{}
		cache := newCategoryCache()
		items := make([]*material.Material, 0, len(rows))

		for _, row := range rows {
			c, created, err := s.resolveCategory(ctx, cache, row)
			if err != nil {
				return fmt.Errorf("row %d: %w", row.line, err)
			}
			if created {
				res.Categories++
			}

			m := material.NewMaterial(row.name, c.ID)
			m.Code = row.code
			if err := m.Validate(ctx); err != nil {
				return fmt.Errorf("row %d: %w", row.line, err)
			}
			items = append(items, m)
		}

		n, err := s.storeMaterials(ctx, items, rows)
		res.Materials = n
		return err
	})
	if err != nil {
		return Result{}, err
	}

	if s.recorder != nil {
		s.recorder.RecordSeeded(res.Categories, res.Materials)
	}
	logger.Info(ctx, "CSV import completed",
		"categories", res.Categories,
		"materials", res.Materials)
	return res, nil
}

// BulkCreator is implemented by material stores that can insert many rows at once.
type BulkCreator interface {
	CreateMany(ctx context.Context, items []*material.Material) (int64, error)
}

// storeMaterials inserts items in bulk when the store supports it, else row by row.
func (s *Seeder) storeMaterials(ctx context.Context, items []*material.Material, rows []record) (int, error) {
	if bulk, ok := s.materials.(BulkCreator); ok {
		n, err := bulk.CreateMany(ctx, items)
		if err != nil {
			return 0, fmt.Errorf("insert materials: %w", err)
		}
		return int(n), nil
	}

	for i, m := range items {
		if err := s.materials.Create(ctx, m); err != nil {
			return 0, fmt.Errorf("row %d: insert material: %w", rows[i].line, err)
		}
	}
	return len(items), nil
}

// categoryCache maps source category ids to stored categories for one import.
type categoryCache struct {
	bySource map[int64]*category.Category
	created  map[int64]bool // store ids assigned during this import
}

func newCategoryCache() *categoryCache {
	return &categoryCache{
		bySource: make(map[int64]*category.Category),
		created:  make(map[int64]bool),
	}
}

// resolveCategory returns the category for a source category id, creating it on first use.
// A category that existed before the import is reused when its id equals the source id.
// One created earlier in this import belongs to another source id and is never matched by id.
func (s *Seeder) resolveCategory(ctx context.Context, cache *categoryCache, row record) (*category.Category, bool, error) {
	if c, ok := cache.bySource[row.categoryID]; ok {
		return c, false, nil
	}

	if !cache.created[row.categoryID] {
		c, err := s.categories.GetByID(ctx, row.categoryID)
		if err == nil {
			cache.bySource[row.categoryID] = c
			return c, false, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, false, fmt.Errorf("get category %d: %w", row.categoryID, err)
		}
	}

	c := category.NewCategory(row.categoryName, s.cfg.PrefixFor(row.categoryID))
	if err := c.Validate(ctx); err != nil {
		return nil, false, err
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, false, fmt.Errorf("create category %q: %w", row.categoryName, err)
	}
	cache.bySource[row.categoryID] = c
	cache.created[c.ID] = true
	return c, true, nil
}

// record is one parsed CSV row.
type record struct {
	line         int
	categoryID   int64
	categoryName string
	code         string
	name         string
}

// columns maps fields to CSV column indexes.
type columns struct {
	sourceID, categoryID, categoryName, code, name int
}

// positional is the layout used when the header is not recognised:
// sourceId,categoryId,categoryName,code,name.
var positional = columns{sourceID: 0, categoryID: 1, categoryName: 2, code: 3, name: 4}

var headerAliases = map[string][]string{
	"sourceID":     {"id", "source_id"},
	"categoryID":   {"category_id", "material_category_id"},
	"categoryName": {"category_name", "material_category_name"},
	"code":         {"code", "material_code"},
	"name":         {"name", "material_name"},
}

// detectColumns locates columns by header name. ok is false when a required
// column is missing.
func detectColumns(header []string) (columns, bool) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		index[h] = i
	}

	find := func(field string) int {
		for _, alias := range headerAliases[field] {
			if i, ok := index[alias]; ok {
				return i
			}
		}
		return -1
	}

	cols := columns{
		sourceID:     find("sourceID"),
		categoryID:   find("categoryID"),
		categoryName: find("categoryName"),
		code:         find("code"),
		name:         find("name"),
	}
	ok := cols.categoryID >= 0 && cols.categoryName >= 0 && cols.code >= 0 && cols.name >= 0
	return cols, ok
}

func (c columns) width() int {
	w := 0
	for _, i := range []int{c.sourceID, c.categoryID, c.categoryName, c.code, c.name} {
		if i+1 > w {
			w = i + 1
		}
	}
	return w
}

// readRows parses the whole file. The first row is always a header.
func readRows(r io.Reader) ([]record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, ok := detectColumns(header)
	if !ok {
		cols = positional
	}

	var rows []record
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if len(fields) < cols.width() {
			return nil, rowError(line, fmt.Sprintf("expected at least %d columns, got %d", cols.width(), len(fields)))
		}

		if cols.sourceID >= 0 {
			if _, err := strconv.ParseInt(strings.TrimSpace(fields[cols.sourceID]), 10, 64); err != nil {
				return nil, rowError(line, fmt.Sprintf("invalid id %q", fields[cols.sourceID]))
			}
		}
		categoryID, err := strconv.ParseInt(strings.TrimSpace(fields[cols.categoryID]), 10, 64)
		if err != nil {
			return nil, rowError(line, fmt.Sprintf("invalid category id %q", fields[cols.categoryID]))
		}

		rows = append(rows, record{
			line:         line,
			categoryID:   categoryID,
			categoryName: strings.TrimSpace(fields[cols.categoryName]),
			code:         fields[cols.code],
			name:         fields[cols.name],
		})
	}
	return rows, nil
}

func rowError(line int, msg string) error {
	return apperror.NewValidation(fmt.Sprintf("row %d: %s", line, msg)).
		WithDetail("row", line)
}
