package category

import (
	"context"
	"fmt"

	"matcat/internal/core/id"
	"matcat/internal/core/tx"
	"matcat/internal/domain"
)

// Service provides business logic for categories.
// Categories are read-only through the API; Create serves seeding.
type Service struct {
	*domain.CatalogService[*Category]
	repo Repository
}

// NewService creates a new category service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
			Repo:       repo,
			TxManager:  txm,
			EntityName: EntityName,
		}),
		repo: repo,
	}
}

// ListAll returns all categories ordered by id.
func (s *Service) ListAll(ctx context.Context) ([]*Category, error) {
	var items []*Category
	err := tx.Read(ctx, s.TxManager(), func(ctx context.Context) error {
		var err error
		items, err = s.repo.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	if items == nil {
		items = []*Category{}
	}
	return items, err
}

// Index returns the categories among ids keyed by id.
func Index(ctx context.Context, repo Repository, ids []id.ID) (map[id.ID]*Category, error) {
	out := make(map[id.ID]*Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	items, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	for _, c := range items {
		out[c.ID] = c
	}
	return out, nil
}
