package repository

import (
	"context"

	"txapp-service/internal/domain/entity"
)

// ShiftRepository defines the persistence operations on shifts
type ShiftRepository interface {
	// CreateOpen inserts an open shift; the open-shift check and the insert are atomic.
	// Returns entity.ErrShiftAlreadyOpen when the driver already has an open shift.
	CreateOpen(ctx context.Context, shift *entity.Shift) error
	FindByID(ctx context.Context, id uint) (*entity.Shift, error)
	FindOpenByDriver(ctx context.Context, driverID uint) ([]*entity.Shift, error)
	FindUnvalidated(ctx context.Context) ([]*entity.Shift, error)
	Update(ctx context.Context, shift *entity.Shift) error
}
