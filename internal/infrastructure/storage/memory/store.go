// Package memory provides in-process category and material stores.
// They back unit tests and the dry-run mode of the seed command.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"matcat/internal/core/apperror"
	"matcat/internal/core/id"
	"matcat/internal/domain"
	"matcat/internal/domain/catalogs/category"
	"matcat/internal/domain/catalogs/material"
	"matcat/internal/domain/filter"
)

// Store holds both tables behind one lock.
type Store struct {
	mu         sync.RWMutex
	categories map[id.ID]category.Category
	materials  map[id.ID]material.Material
	nextCatID  id.ID
	nextMatID  id.ID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		categories: make(map[id.ID]category.Category),
		materials:  make(map[id.ID]material.Material),
	}
}

// Categories returns the category repository view of the store.
func (s *Store) Categories() *CategoryRepo {
	return &CategoryRepo{s: s}
}

// Materials returns the material repository view of the store.
func (s *Store) Materials() *MaterialRepo {
	return &MaterialRepo{s: s}
}

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	s *Store
}

var _ category.Repository = (*CategoryRepo)(nil)

// Create stores c and assigns an id when it has none.
func (r *CategoryRepo) Create(ctx context.Context, c *category.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c.ID == 0 {
		r.s.nextCatID++
		c.ID = r.s.nextCatID
	} else if c.ID > r.s.nextCatID {
		r.s.nextCatID = c.ID
	}
	if _, ok := r.s.categories[c.ID]; ok {
		return apperror.NewConflict("category already exists").WithDetail("id", c.ID)
	}
	r.s.categories[c.ID] = *c
	return nil
}

// GetByID implements category.Repository.
func (r *CategoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*category.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[categoryID]
	if !ok {
		return nil, apperror.NewNotFound(category.EntityName, categoryID)
	}
	return &c, nil
}

// GetByIDs implements category.Repository.
func (r *CategoryRepo) GetByIDs(ctx context.Context, ids []id.ID) ([]*category.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*category.Category, 0, len(ids))
	for _, categoryID := range ids {
		if c, ok := r.s.categories[categoryID]; ok {
			out = append(out, &c)
		}
	}
	return out, nil
}

// ListAll implements category.Repository.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]*category.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*category.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update implements category.Repository.
func (r *CategoryRepo) Update(ctx context.Context, c *category.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[c.ID]; !ok {
		return apperror.NewNotFound(category.EntityName, c.ID)
	}
	r.s.categories[c.ID] = *c
	return nil
}

// Delete implements category.Repository. Referenced categories are not removed.
func (r *CategoryRepo) Delete(ctx context.Context, categoryID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[categoryID]; !ok {
		return apperror.NewNotFound(category.EntityName, categoryID)
	}
	for _, m := range r.s.materials {
		if m.CategoryID == categoryID {
			return apperror.NewConflict("category is referenced by materials").
				WithDetail("id", categoryID)
		}
	}
	delete(r.s.categories, categoryID)
	return nil
}

// List implements category.Repository.
func (r *CategoryRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*category.Category], error) {
	all, _ := r.ListAll(ctx)
	var matched []*category.Category
	for _, c := range all {
		if matchSearch(f.Search, c.Name, c.Code) {
			matched = append(matched, c)
		}
	}
	return paginate(matched, f), nil
}

// Exists implements category.Repository.
func (r *CategoryRepo) Exists(ctx context.Context, categoryID id.ID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.categories[categoryID]
	return ok, nil
}

// MaterialRepo implements material.Repository.
type MaterialRepo struct {
	s *Store
}

var _ material.Repository = (*MaterialRepo)(nil)

// Create stores m and assigns an id. The category must exist.
func (r *MaterialRepo) Create(ctx context.Context, m *material.Material) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[m.CategoryID]; !ok {
		return apperror.NewConflict("category does not exist").WithDetail("categoryId", m.CategoryID)
	}
	if m.ID == 0 {
		r.s.nextMatID++
		m.ID = r.s.nextMatID
	} else if m.ID > r.s.nextMatID {
		r.s.nextMatID = m.ID
	}
	r.s.materials[m.ID] = *m
	return nil
}

// CreateMany stores items atomically: nothing is stored when any category is missing.
func (r *MaterialRepo) CreateMany(ctx context.Context, items []*material.Material) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range items {
		if _, ok := r.s.categories[m.CategoryID]; !ok {
			return 0, apperror.NewConflict("category does not exist").WithDetail("categoryId", m.CategoryID)
		}
	}
	for _, m := range items {
		r.s.nextMatID++
		m.ID = r.s.nextMatID
		r.s.materials[m.ID] = *m
	}
	return int64(len(items)), nil
}

// GetByID implements material.Repository.
func (r *MaterialRepo) GetByID(ctx context.Context, materialID id.ID) (*material.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.materials[materialID]
	if !ok {
		return nil, apperror.NewNotFound(material.EntityName, materialID)
	}
	return &m, nil
}

// Update implements material.Repository.
func (r *MaterialRepo) Update(ctx context.Context, m *material.Material) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.materials[m.ID]; !ok {
		return apperror.NewNotFound(material.EntityName, m.ID)
	}
	if _, ok := r.s.categories[m.CategoryID]; !ok {
		return apperror.NewConflict("category does not exist").WithDetail("categoryId", m.CategoryID)
	}
	r.s.materials[m.ID] = *m
	return nil
}

// Delete implements material.Repository.
func (r *MaterialRepo) Delete(ctx context.Context, materialID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.materials[materialID]; !ok {
		return apperror.NewNotFound(material.EntityName, materialID)
	}
	delete(r.s.materials, materialID)
	return nil
}

// List implements material.Repository. Only Equal and InList filters on
// category_id and id are supported.
func (r *MaterialRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*material.Material], error) {
	r.s.mu.RLock()
	all := make([]*material.Material, 0, len(r.s.materials))
	for _, m := range r.s.materials {
		all = append(all, &m)
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if strings.HasPrefix(f.OrderBy, "-") {
		sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	}

	var matched []*material.Material
	for _, m := range all {
		if !matchSearch(f.Search, m.Name, m.Code) {
			continue
		}
		if len(f.IDs) > 0 && !containsID(f.IDs, m.ID) {
			continue
		}
		ok, err := matchFilters(f.AdvancedFilters, m)
		if err != nil {
			return domain.ListResult[*material.Material]{}, err
		}
		if ok {
			matched = append(matched, m)
		}
	}
	return paginate(matched, f), nil
}

// Exists implements material.Repository.
func (r *MaterialRepo) Exists(ctx context.Context, materialID id.ID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.materials[materialID]
	return ok, nil
}

// LatestCodeInCategory implements material.Repository.
func (r *MaterialRepo) LatestCodeInCategory(ctx context.Context, categoryID id.ID) (string, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var latest *material.Material
	for _, m := range r.s.materials {
		if m.CategoryID != categoryID {
			continue
		}
		if latest == nil || m.ID > latest.ID {
			latest = &m
		}
	}
	if latest == nil {
		return "", false, nil
	}
	return latest.Code, true, nil
}

// Count implements material.Repository.
func (r *MaterialRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.materials)), nil
}

func matchSearch(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func matchFilters(items []filter.Item, m *material.Material) (bool, error) {
	for _, item := range items {
		var actual id.ID
		switch item.Field {
		case "category_id":
			actual = m.CategoryID
		case "id":
			actual = m.ID
		default:
			return false, apperror.NewValidation("invalid filter column").WithDetail("field", item.Field)
		}

		switch item.Operator {
		case filter.Equal:
			if v, ok := item.Value.(id.ID); !ok || v != actual {
				return false, nil
			}
		case filter.InList:
			if v, ok := item.Value.([]id.ID); !ok || !containsID(v, actual) {
				return false, nil
			}
		default:
			return false, apperror.NewValidation("unsupported filter operator").
				WithDetail("operator", string(item.Operator))
		}
	}
	return true, nil
}

func containsID(ids []id.ID, v id.ID) bool {
	for _, x := range ids {
		if x == v {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, f domain.ListFilter) domain.ListResult[T] {
	res := domain.ListResult[T]{
		TotalCount: int64(len(items)),
		Limit:      f.Limit,
		Offset:     f.Offset,
	}
	offset := max(f.Offset, 0)
	if offset >= len(items) {
		res.Items = []T{}
		return res
	}
	end := len(items)
	if f.Limit > 0 && f.Limit < end-offset {
		end = offset + f.Limit
	}
	res.Items = items[offset:end]
	return res
}
