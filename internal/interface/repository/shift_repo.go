package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
)

const openShiftCondition = "driver_id = ? AND validated = false AND end_time IS NULL"

// GormShiftRepository implements the ShiftRepository interface on postgres
type GormShiftRepository struct {
	db *gorm.DB
}

// NewGormShiftRepository creates a new shift repository
func NewGormShiftRepository(db *gorm.DB) repository.ShiftRepository {
	return &GormShiftRepository{db: db}
}

// CreateOpen checks for an open shift and inserts in one transaction. Two
// concurrent inserts that both pass the check collide on uniq_open_shift_per_driver.
func (r *GormShiftRepository) CreateOpen(ctx context.Context, shift *entity.Shift) error {
	m := newShiftModel(shift)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open []uint
		if err := tx.Model(&shiftModel{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(openShiftCondition, shift.DriverID).
			Pluck("id", &open).Error; err != nil {
			return err
		}
		if len(open) > 0 {
			return entity.ErrShiftAlreadyOpen
		}
		return tx.Create(m).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return entity.ErrShiftAlreadyOpen
	}
	if err != nil {
		return err
	}

	*shift = *m.toEntity()
	return nil
}

// FindByID finds a shift by ID
func (r *GormShiftRepository) FindByID(ctx context.Context, id uint) (*entity.Shift, error) {
	var m shiftModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrShiftNotFound
		}
		return nil, err
	}
	return m.toEntity(), nil
}

// FindOpenByDriver returns the open shifts of a driver, latest first
func (r *GormShiftRepository) FindOpenByDriver(ctx context.Context, driverID uint) ([]*entity.Shift, error) {
	var models []shiftModel
	if err := r.db.WithContext(ctx).
		Where(openShiftCondition, driverID).
		Order("start_time DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toShifts(models), nil
}

// FindUnvalidated returns every open or closed shift
func (r *GormShiftRepository) FindUnvalidated(ctx context.Context) ([]*entity.Shift, error) {
	var models []shiftModel
	if err := r.db.WithContext(ctx).
		Where("validated = ?", false).
		Order("start_time ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toShifts(models), nil
}

// Update writes every mutable column of the shift
func (r *GormShiftRepository) Update(ctx context.Context, shift *entity.Shift) error {
	m := newShiftModel(shift)
	result := r.db.WithContext(ctx).
		Model(&shiftModel{ID: shift.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return entity.ErrShiftAlreadyOpen
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrShiftNotFound
	}
	shift.UpdatedAt = m.UpdatedAt
	return nil
}

func toShifts(models []shiftModel) []*entity.Shift {
	out := make([]*entity.Shift, 0, len(models))
	for i := range models {
		out = append(out, models[i].toEntity())
	}
	return out
}
