package repository

import (
	"context"

	"txapp-service/internal/domain/entity"
)

// UserRepository defines the operations on application accounts
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	Save(ctx context.Context, user *entity.User) error
}
