package repository

import "context"

// CatalogRepository is the CRUD contract shared by vehicles, clients, payment methods and drivers
type CatalogRepository[T any] interface {
	List(ctx context.Context) ([]*T, error)
	FindByID(ctx context.Context, id uint) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, id uint, item *T) error
	Delete(ctx context.Context, id uint) error
}
