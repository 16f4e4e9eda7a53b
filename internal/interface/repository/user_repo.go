package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
)

// GormUserRepository implements the UserRepository interface on postgres
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new user repository
func NewGormUserRepository(db *gorm.DB) repository.UserRepository {
	return &GormUserRepository{db: db}
}

// FindByUsername finds an account by its login
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return m.toEntity(), nil
}

// Save inserts or updates the account
func (r *GormUserRepository) Save(ctx context.Context, user *entity.User) error {
	m := &userModel{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		DriverID:     user.DriverID,
		Active:       user.Active,
		CreatedAt:    user.CreatedAt,
	}

	db := r.db.WithContext(ctx)
	if m.ID == 0 {
		if err := db.Create(m).Error; err != nil {
			return err
		}
	} else if err := db.Model(&userModel{ID: m.ID}).Select("*").Omit("id", "created_at").Updates(m).Error; err != nil {
		return err
	}

	*user = *m.toEntity()
	return nil
}
