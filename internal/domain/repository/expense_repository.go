package repository

import (
	"context"

	"txapp-service/internal/domain/entity"
)

// ExpenseRepository defines the persistence operations on expenses
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	ListByShift(ctx context.Context, shiftID uint) ([]*entity.Expense, error)
	ListByShifts(ctx context.Context, shiftIDs []uint) ([]*entity.Expense, error)
	DeleteAll(ctx context.Context) (int64, error)
}
