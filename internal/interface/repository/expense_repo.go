package repository

import (
	"context"

	"gorm.io/gorm"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
)

// GormExpenseRepository implements the ExpenseRepository interface on postgres
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new expense repository
func NewGormExpenseRepository(db *gorm.DB) repository.ExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Create inserts an expense
func (r *GormExpenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	m := newExpenseModel(expense)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*expense = *m.toEntity()
	return nil
}

// ListByShift returns the expenses of a shift by date
func (r *GormExpenseRepository) ListByShift(ctx context.Context, shiftID uint) ([]*entity.Expense, error) {
	return r.ListByShifts(ctx, []uint{shiftID})
}

// ListByShifts returns the expenses of several shifts
func (r *GormExpenseRepository) ListByShifts(ctx context.Context, shiftIDs []uint) ([]*entity.Expense, error) {
	if len(shiftIDs) == 0 {
		return nil, nil
	}
	var models []expenseModel
	if err := r.db.WithContext(ctx).
		Where("shift_id IN ?", shiftIDs).
		Order("date ASC, id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.Expense, 0, len(models))
	for i := range models {
		out = append(out, models[i].toEntity())
	}
	return out, nil
}

// DeleteAll removes every expense row
func (r *GormExpenseRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&expenseModel{})
	return result.RowsAffected, result.Error
}
