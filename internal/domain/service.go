package domain

import (
	"context"
	"fmt"

	"matcat/internal/core/apperror"
	"matcat/internal/core/entity"
	"matcat/internal/core/id"
	"matcat/internal/core/tx"
	"matcat/pkg/logger"
)

// CatalogService provides the shared lifecycle of catalog entities:
// validation, hooks and transactional persistence.
type CatalogService[T entity.Validatable] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]

	// entityName for error messages
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T entity.Validatable] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager // nil runs operations without a transaction
	EntityName string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T entity.Validatable](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	txm := cfg.TxManager
	if txm == nil {
		txm = tx.Passthrough{}
	}
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  txm,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// TxManager returns the transaction manager operations run in.
func (s *CatalogService[T]) TxManager() tx.Manager {
	return s.txManager
}

// EntityName is the name used in error messages.
func (s *CatalogService[T]) EntityName() string {
	return s.entityName
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

// NormalizeGetErr maps a lookup error onto this entity's NOT_FOUND or INTERNAL error.
func (s *CatalogService[T]) NormalizeGetErr(err error, entityID id.ID) error {
	if err == nil {
		return nil
	}
	// Preserve existing AppError, but ensure not-found is mapped to the correct entity name.
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, entityID)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", entityID)
}

// Create validates the entity, then runs before-create hooks and the insert
// in one transaction. After-create hooks run once the insert succeeded.
func (s *CatalogService[T]) Create(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.Run(ctx, BeforeCreate, entity); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, entity); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runAfter(ctx, AfterCreate, entity)
	return nil
}

// GetByID retrieves entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	var result T
	err := tx.Read(ctx, s.txManager, func(ctx context.Context) error {
		found, err := s.repo.GetByID(ctx, entityID)
		if err != nil {
			return s.NormalizeGetErr(err, entityID)
		}
		result = found
		return nil
	})
	return result, err
}

// Update validates and overwrites an existing entity.
func (s *CatalogService[T]) Update(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.Run(ctx, BeforeUpdate, entity); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, entity); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runAfter(ctx, AfterUpdate, entity)
	return nil
}

// Delete removes the entity permanently.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	var deleted T
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Loaded first so hooks see the row being removed.
		existing, err := s.repo.GetByID(ctx, entityID)
		if err != nil {
			return s.NormalizeGetErr(err, entityID)
		}
		if err := s.hooks.Run(ctx, BeforeDelete, existing); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, entityID); err != nil {
			if apperror.IsNotFound(err) {
				return s.NormalizeGetErr(err, entityID)
			}
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return err
	}

	s.runAfter(ctx, AfterDelete, deleted)
	return nil
}

// List retrieves entities with filtering.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	var result ListResult[T]
	err := tx.Read(ctx, s.txManager, func(ctx context.Context) error {
		var err error
		result, err = s.repo.List(ctx, filter)
		return err
	})
	return result, err
}

// Exists checks if entity exists.
func (s *CatalogService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}

// runAfter executes after-hooks; the change is already committed, so failures are only logged.
func (s *CatalogService[T]) runAfter(ctx context.Context, event HookEvent, entity T) {
	if err := s.hooks.Run(ctx, event, entity); err != nil {
		logger.Warn(ctx, "after hook failed",
			"entity", s.entityName,
			"event", string(event),
			"error", err)
	}
}
