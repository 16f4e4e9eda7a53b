package repository

import (
	"fmt"

	"gorm.io/gorm"

	"txapp-service/internal/domain/entity"
)

// openShiftIndex makes "one open shift per driver" a database guarantee
const openShiftIndex = `CREATE UNIQUE INDEX IF NOT EXISTS uniq_open_shift_per_driver
	ON shifts (driver_id) WHERE validated = false AND end_time IS NULL`

// Migrate creates or updates the relational schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Driver{},
		&entity.Vehicle{},
		&entity.Client{},
		&entity.PaymentMethod{},
		&userModel{},
		&shiftModel{},
		&tripModel{},
		&expenseModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := db.Exec(openShiftIndex).Error; err != nil {
		return fmt.Errorf("failed to create open shift index: %w", err)
	}
	return nil
}
