package usecase

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/pkg/logger"
)

// CatalogService is the CRUD surface of one reference table (vehicles, clients, ...).
// Reads are open to any authenticated identity; writes need ActionManageCatalog.
type CatalogService[T any] struct {
	name     string
	repo     repository.CatalogRepository[T]
	validate *validator.Validate
	logger   logger.Logger
}

// NewCatalogService creates a catalog service for the named table
func NewCatalogService[T any](name string, repo repository.CatalogRepository[T], validate *validator.Validate, logger logger.Logger) *CatalogService[T] {
	if validate == nil {
		validate = validator.New()
	}
	return &CatalogService[T]{
		name:     name,
		repo:     repo,
		validate: validate,
		logger:   logger,
	}
}

// List returns every item
func (s *CatalogService[T]) List(ctx context.Context, actor entity.Identity) ([]*T, error) {
	if !actor.Role.Valid() {
		return nil, entity.ErrUnauthorized
	}
	return s.repo.List(ctx)
}

// Get returns one item
func (s *CatalogService[T]) Get(ctx context.Context, actor entity.Identity, id uint) (*T, error) {
	if !actor.Role.Valid() {
		return nil, entity.ErrUnauthorized
	}
	return s.repo.FindByID(ctx, id)
}

// Create validates and stores a new item
func (s *CatalogService[T]) Create(ctx context.Context, actor entity.Identity, item *T) error {
	if err := s.checkWrite(actor, item); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.name, err)
	}
	s.logger.Info("Catalog item created", "catalog", s.name, "userID", actor.UserID)
	return nil
}

// Update replaces the stored item
func (s *CatalogService[T]) Update(ctx context.Context, actor entity.Identity, id uint, item *T) error {
	if err := s.checkWrite(actor, item); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, item); err != nil {
		return fmt.Errorf("failed to update %s %d: %w", s.name, id, err)
	}
	s.logger.Info("Catalog item updated", "catalog", s.name, "id", id, "userID", actor.UserID)
	return nil
}

// Delete removes the item
func (s *CatalogService[T]) Delete(ctx context.Context, actor entity.Identity, id uint) error {
	if !actor.Can(entity.ActionManageCatalog) {
		return entity.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", s.name, id, err)
	}
	s.logger.Info("Catalog item deleted", "catalog", s.name, "id", id, "userID", actor.UserID)
	return nil
}

func (s *CatalogService[T]) checkWrite(actor entity.Identity, item *T) error {
	if !actor.Can(entity.ActionManageCatalog) {
		return entity.ErrForbidden
	}
	if item == nil {
		return entity.ErrInvalidInput
	}
	if err := s.validate.Struct(item); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
	}
	return nil
}
