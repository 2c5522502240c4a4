package material

import (
	"context"
	"fmt"
	"strings"

	"matcat/internal/core/apperror"
	"matcat/internal/core/id"
	corenumerator "matcat/internal/core/numerator"
	"matcat/internal/core/tx"
	"matcat/internal/domain"
	"matcat/internal/domain/catalogs/category"
	"matcat/internal/domain/filter"
)

// Service provides business logic for the material catalog.
// Uses composition with domain.CatalogService for persistence and hooks.
type Service struct {
	*domain.CatalogService[*Material]
	repo       Repository
	categories category.Repository
	numerator  corenumerator.Generator
}

// ServiceConfig configures the material service.
type ServiceConfig struct {
	Repo       Repository
	Categories category.Repository
	Numerator  corenumerator.Generator
	TxManager  tx.Manager
}

// NewService creates a new material service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Material]{
			Repo:       cfg.Repo,
			TxManager:  cfg.TxManager,
			EntityName: EntityName,
		}),
		repo:       cfg.Repo,
		categories: cfg.Categories,
		numerator:  cfg.Numerator,
	}
}

// List returns one page of all materials ordered by id.
func (s *Service) List(ctx context.Context, req domain.PageRequest) (domain.Page[View], error) {
	if err := req.Validate(); err != nil {
		return domain.Page[View]{}, err
	}
	var page domain.Page[View]
	err := tx.Read(ctx, s.TxManager(), func(ctx context.Context) error {
		var err error
		page, err = s.page(ctx, req.Filter(), req)
		return err
	})
	return page, err
}

// Get returns one material.
func (s *Service) Get(ctx context.Context, materialID id.ID) (View, error) {
	var view View
	err := tx.Read(ctx, s.TxManager(), func(ctx context.Context) error {
		m, err := s.repo.GetByID(ctx, materialID)
		if err != nil {
			return s.NormalizeGetErr(err, materialID)
		}
		c, err := s.resolveCategory(ctx, m.CategoryID)
		if err != nil {
			return err
		}
		view = NewView(m, c)
		return nil
	})
	return view, err
}

// Create allocates the next code in the category and stores a new material.
func (s *Service) Create(ctx context.Context, in Input) (View, error) {
	if err := in.Validate(); err != nil {
		return View{}, err
	}

	var view View
	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.resolveCategory(ctx, in.CategoryID)
		if err != nil {
			return err
		}

		m := NewMaterial(in.Name, c.ID)
		if m.Code, err = s.allocate(ctx, c); err != nil {
			return err
		}
		if err := s.CatalogService.Create(ctx, m); err != nil {
			return err
		}

		view = NewView(m, c)
		return nil
	})
	return view, err
}

// Update renames a material and optionally moves it to another category.
// The code is reallocated only when the category changes.
// A missing material is reported before invalid input.
func (s *Service) Update(ctx context.Context, materialID id.ID, in Input) (View, error) {
	var view View
	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetByID(ctx, materialID)
		if err != nil {
			return s.NormalizeGetErr(err, materialID)
		}
		if err := in.Validate(); err != nil {
			return err
		}
		c, err := s.resolveCategory(ctx, in.CategoryID)
		if err != nil {
			return err
		}

		if c.ID != m.CategoryID {
			if m.Code, err = s.allocate(ctx, c); err != nil {
				return err
			}
			m.CategoryID = c.ID
		}
		m.Name = in.Name

		if err := s.CatalogService.Update(ctx, m); err != nil {
			return err
		}

		view = NewView(m, c)
		return nil
	})
	return view, err
}

// ListByCategory returns one page of the materials in a category.
func (s *Service) ListByCategory(ctx context.Context, categoryID id.ID, req domain.PageRequest) (domain.Page[View], error) {
	if err := req.Validate(); err != nil {
		return domain.Page[View]{}, err
	}
	var page domain.Page[View]
	err := tx.Read(ctx, s.TxManager(), func(ctx context.Context) error {
		if _, err := s.resolveCategory(ctx, categoryID); err != nil {
			return err
		}
		f := req.Filter()
		f.AdvancedFilters = []filter.Item{filter.Eq("category_id", categoryID)}

		var err error
		page, err = s.page(ctx, f, req)
		return err
	})
	return page, err
}

// Search matches keyword case-insensitively against name or code.
// A nil or blank keyword behaves exactly like List.
func (s *Service) Search(ctx context.Context, keyword *string, req domain.PageRequest) (domain.Page[View], error) {
	if keyword == nil || strings.TrimSpace(*keyword) == "" {
		return s.List(ctx, req)
	}
	if err := req.Validate(); err != nil {
		return domain.Page[View]{}, err
	}
	var page domain.Page[View]
	err := tx.Read(ctx, s.TxManager(), func(ctx context.Context) error {
		f := req.Filter()
		// Matched as given; only the emptiness check trims.
		f.Search = *keyword

		var err error
		page, err = s.page(ctx, f, req)
		return err
	})
	return page, err
}

// page lists materials and joins category names with one batch lookup.
func (s *Service) page(ctx context.Context, f domain.ListFilter, req domain.PageRequest) (domain.Page[View], error) {
	result, err := s.repo.List(ctx, f)
	if err != nil {
		return domain.Page[View]{}, fmt.Errorf("list materials: %w", err)
	}

	ids := make([]id.ID, 0, len(result.Items))
	seen := make(map[id.ID]struct{}, len(result.Items))
	for _, m := range result.Items {
		if _, ok := seen[m.CategoryID]; ok {
			continue
		}
		seen[m.CategoryID] = struct{}{}
		ids = append(ids, m.CategoryID)
	}

	byID, err := category.Index(ctx, s.categories, ids)
	if err != nil {
		return domain.Page[View]{}, err
	}

	views := make([]View, 0, len(result.Items))
	for _, m := range result.Items {
		views = append(views, NewView(m, byID[m.CategoryID]))
	}
	return domain.NewPage(views, result.TotalCount, req), nil
}

// resolveCategory loads a category or fails with NOT_FOUND(category).
func (s *Service) resolveCategory(ctx context.Context, categoryID id.ID) (*category.Category, error) {
	c, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(category.EntityName, categoryID)
		}
		return nil, fmt.Errorf("get category %d: %w", categoryID, err)
	}
	return c, nil
}

func (s *Service) allocate(ctx context.Context, c *category.Category) (string, error) {
	alloc, err := s.numerator.NextCode(ctx, corenumerator.Sequence{
		CategoryID: c.ID,
		Prefix:     c.Prefix(),
	})
	if err != nil {
		return "", fmt.Errorf("allocate code in category %d: %w", c.ID, err)
	}
	return alloc.Code, nil
}

// MutationRecorder counts material changes by operation.
type MutationRecorder interface {
	RecordMutation(operation string)
}

// ObserveMutations counts every create, update and delete on r.
func (s *Service) ObserveMutations(r MutationRecorder) {
	count := func(op string) domain.Hook[*Material] {
		return func(context.Context, *Material) error {
			r.RecordMutation(op)
			return nil
		}
	}
	s.Hooks().OnAfterCreate(count("create"))
	s.Hooks().OnAfterUpdate(count("update"))
	s.Hooks().OnAfterDelete(count("delete"))
}
