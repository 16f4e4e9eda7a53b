package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
)

// GormCatalogRepository is the postgres CRUD store for one reference table.
// T is a gorm model with an "id" primary key.
type GormCatalogRepository[T any] struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a catalog repository for T
func NewGormCatalogRepository[T any](db *gorm.DB) repository.CatalogRepository[T] {
	return &GormCatalogRepository[T]{db: db}
}

// List returns every row ordered by id
func (r *GormCatalogRepository[T]) List(ctx context.Context) ([]*T, error) {
	var items []*T
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID finds one row
func (r *GormCatalogRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	item := new(T)
	if err := r.db.WithContext(ctx).First(item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

// Create inserts a row
func (r *GormCatalogRepository[T]) Create(ctx context.Context, item *T) error {
	return duplicateAsInvalid(r.db.WithContext(ctx).Create(item).Error)
}

// Update overwrites every column of the row and reloads it into item
func (r *GormCatalogRepository[T]) Update(ctx context.Context, id uint, item *T) error {
	result := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(item)
	if err := duplicateAsInvalid(result.Error); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return r.db.WithContext(ctx).First(item, id).Error
}

// Delete removes the row
func (r *GormCatalogRepository[T]) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func duplicateAsInvalid(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: already exists", entity.ErrInvalidInput)
	}
	return err
}
