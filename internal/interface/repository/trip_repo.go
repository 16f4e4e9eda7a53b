package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
)

// GormTripRepository implements the TripRepository interface on postgres
type GormTripRepository struct {
	db *gorm.DB
}

// NewGormTripRepository creates a new trip repository
func NewGormTripRepository(db *gorm.DB) repository.TripRepository {
	return &GormTripRepository{db: db}
}

// Create inserts the trip. The parent shift row is locked so order
// assignment is serialised per shift.
func (r *GormTripRepository) Create(ctx context.Context, trip *entity.Trip) error {
	m := newTripModel(trip)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent shiftModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&parent, trip.ShiftID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entity.ErrShiftNotFound
			}
			return err
		}

		if m.OrderIndex == 0 {
			var last int
			if err := tx.Model(&tripModel{}).
				Where("shift_id = ?", trip.ShiftID).
				Select("COALESCE(MAX(order_index), 0)").
				Scan(&last).Error; err != nil {
				return err
			}
			m.OrderIndex = last + 1
		}
		return tx.Create(m).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return entity.ErrDuplicateOrder
	}
	if err != nil {
		return err
	}

	*trip = *m.toEntity()
	return nil
}

// FindByID finds a trip by ID
func (r *GormTripRepository) FindByID(ctx context.Context, id uint) (*entity.Trip, error) {
	var m tripModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrTripNotFound
		}
		return nil, err
	}
	return m.toEntity(), nil
}

// Update writes every mutable column of the trip
func (r *GormTripRepository) Update(ctx context.Context, trip *entity.Trip) error {
	m := newTripModel(trip)
	result := r.db.WithContext(ctx).
		Model(&tripModel{ID: trip.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return entity.ErrDuplicateOrder
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrTripNotFound
	}
	trip.UpdatedAt = m.UpdatedAt
	return nil
}

// ListByShift returns the trips of a shift by ascending order
func (r *GormTripRepository) ListByShift(ctx context.Context, shiftID uint) ([]*entity.Trip, error) {
	var models []tripModel
	if err := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("order_index ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toTrips(models), nil
}

// ListByShifts returns the trips of several shifts
func (r *GormTripRepository) ListByShifts(ctx context.Context, shiftIDs []uint) ([]*entity.Trip, error) {
	if len(shiftIDs) == 0 {
		return nil, nil
	}
	var models []tripModel
	if err := r.db.WithContext(ctx).
		Where("shift_id IN ?", shiftIDs).
		Order("shift_id ASC, order_index ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toTrips(models), nil
}

func toTrips(models []tripModel) []*entity.Trip {
	out := make([]*entity.Trip, 0, len(models))
	for i := range models {
		out = append(out, models[i].toEntity())
	}
	return out
}
