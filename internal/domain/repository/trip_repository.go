package repository

import (
	"context"

	"txapp-service/internal/domain/entity"
)

// TripRepository defines the persistence operations on trips
type TripRepository interface {
	// Create inserts a trip. A zero OrderIndex is replaced by the next free index of the shift.
	// Returns entity.ErrDuplicateOrder when the index is already used.
	Create(ctx context.Context, trip *entity.Trip) error
	FindByID(ctx context.Context, id uint) (*entity.Trip, error)
	Update(ctx context.Context, trip *entity.Trip) error
	// ListByShift returns trips ordered by OrderIndex ascending
	ListByShift(ctx context.Context, shiftID uint) ([]*entity.Trip, error)
	ListByShifts(ctx context.Context, shiftIDs []uint) ([]*entity.Trip, error)
}
