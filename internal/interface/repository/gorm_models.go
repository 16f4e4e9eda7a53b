package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"txapp-service/internal/domain/entity"
)

type shiftModel struct {
	ID                uint            `gorm:"primaryKey"`
	DriverID          uint            `gorm:"not null;index"`
	VehicleID         uint            `gorm:"not null;index"`
	ServiceDate       time.Time       `gorm:"type:date;not null"`
	EncodingMode      string          `gorm:"size:16;not null"`
	StartTime         time.Time       `gorm:"not null"`
	EndTime           *time.Time      `gorm:"check:chk_shift_end_after_start,end_time IS NULL OR end_time > start_time"`
	OdometerStart     int             `gorm:"not null;check:chk_shift_odometer_start,odometer_start >= 0"`
	OdometerEnd       *int            `gorm:"check:chk_shift_odometer,odometer_end IS NULL OR odometer_end >= odometer_start"`
	InterruptionNotes string          `gorm:"type:text"`
	DeclaredCash      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Validated         bool            `gorm:"not null;index"`
	ValidatedAt       *time.Time
	ValidatedBy       *uint
	Signature         string `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (shiftModel) TableName() string { return "shifts" }

func newShiftModel(s *entity.Shift) *shiftModel {
	return &shiftModel{
		ID:                s.ID,
		DriverID:          s.DriverID,
		VehicleID:         s.VehicleID,
		ServiceDate:       s.ServiceDate,
		EncodingMode:      string(s.EncodingMode),
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		OdometerStart:     s.OdometerStart,
		OdometerEnd:       s.OdometerEnd,
		InterruptionNotes: s.InterruptionNotes,
		DeclaredCash:      s.DeclaredCash,
		Validated:         s.Validated,
		ValidatedAt:       s.ValidatedAt,
		ValidatedBy:       s.ValidatedBy,
		Signature:         s.Signature,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func (m *shiftModel) toEntity() *entity.Shift {
	return &entity.Shift{
		ID:                m.ID,
		DriverID:          m.DriverID,
		VehicleID:         m.VehicleID,
		ServiceDate:       m.ServiceDate,
		EncodingMode:      entity.EncodingMode(m.EncodingMode),
		StartTime:         m.StartTime,
		EndTime:           m.EndTime,
		OdometerStart:     m.OdometerStart,
		OdometerEnd:       m.OdometerEnd,
		InterruptionNotes: m.InterruptionNotes,
		DeclaredCash:      m.DeclaredCash,
		Validated:         m.Validated,
		ValidatedAt:       m.ValidatedAt,
		ValidatedBy:       m.ValidatedBy,
		Signature:         m.Signature,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

type tripModel struct {
	ID              uint            `gorm:"primaryKey"`
	ShiftID         uint            `gorm:"not null;uniqueIndex:uniq_trip_order,priority:1"`
	ClientID        *uint           `gorm:"index"`
	PaymentMethodID *uint
	OrderIndex      int             `gorm:"not null;uniqueIndex:uniq_trip_order,priority:2;check:chk_trip_order,order_index > 0"`
	OdometerStart   int             `gorm:"not null"`
	PickupLocation  string          `gorm:"size:255;not null"`
	PickupTime      time.Time       `gorm:"not null"`
	OdometerEnd     *int            `gorm:"check:chk_trip_odometer,odometer_end IS NULL OR odometer_end >= odometer_start"`
	DropoffLocation string          `gorm:"size:255"`
	DropoffTime     *time.Time
	MeterPrice      decimal.Decimal `gorm:"type:numeric(10,2);not null;check:chk_trip_meter_price,meter_price >= 0"`
	AmountCollected decimal.Decimal `gorm:"type:numeric(10,2);not null;check:chk_trip_amount,amount_collected >= 0"`
	OffSchedule     bool            `gorm:"not null"`
	Notes           string          `gorm:"type:text"`
	Status          string          `gorm:"size:16;not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (tripModel) TableName() string { return "trips" }

func newTripModel(t *entity.Trip) *tripModel {
	return &tripModel{
		ID:              t.ID,
		ShiftID:         t.ShiftID,
		ClientID:        t.ClientID,
		PaymentMethodID: t.PaymentMethodID,
		OrderIndex:      t.OrderIndex,
		OdometerStart:   t.OdometerStart,
		PickupLocation:  t.PickupLocation,
		PickupTime:      t.PickupTime,
		OdometerEnd:     t.OdometerEnd,
		DropoffLocation: t.DropoffLocation,
		DropoffTime:     t.DropoffTime,
		MeterPrice:      t.MeterPrice,
		AmountCollected: t.AmountCollected,
		OffSchedule:     t.OffSchedule,
		Notes:           t.Notes,
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (m *tripModel) toEntity() *entity.Trip {
	return &entity.Trip{
		ID:              m.ID,
		ShiftID:         m.ShiftID,
		ClientID:        m.ClientID,
		PaymentMethodID: m.PaymentMethodID,
		OrderIndex:      m.OrderIndex,
		OdometerStart:   m.OdometerStart,
		PickupLocation:  m.PickupLocation,
		PickupTime:      m.PickupTime,
		OdometerEnd:     m.OdometerEnd,
		DropoffLocation: m.DropoffLocation,
		DropoffTime:     m.DropoffTime,
		MeterPrice:      m.MeterPrice,
		AmountCollected: m.AmountCollected,
		OffSchedule:     m.OffSchedule,
		Notes:           m.Notes,
		Status:          entity.TripStatus(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

type expenseModel struct {
	ID              uint            `gorm:"primaryKey"`
	ShiftID         uint            `gorm:"not null;index"`
	Category        string          `gorm:"size:50;not null"`
	Description     string          `gorm:"size:255"`
	Amount          decimal.Decimal `gorm:"type:numeric(10,2);not null;check:chk_expense_amount,amount >= 0"`
	Date            time.Time       `gorm:"not null"`
	PaymentMethodID *uint
	ReceiptRef      string `gorm:"size:255"`
	Notes           string `gorm:"type:text"`
	CreatedAt       time.Time
}

func (expenseModel) TableName() string { return "expenses" }

func newExpenseModel(e *entity.Expense) *expenseModel {
	return &expenseModel{
		ID:              e.ID,
		ShiftID:         e.ShiftID,
		Category:        e.Category,
		Description:     e.Description,
		Amount:          e.Amount,
		Date:            e.Date,
		PaymentMethodID: e.PaymentMethodID,
		ReceiptRef:      e.ReceiptRef,
		Notes:           e.Notes,
		CreatedAt:       e.CreatedAt,
	}
}

func (m *expenseModel) toEntity() *entity.Expense {
	return &entity.Expense{
		ID:              m.ID,
		ShiftID:         m.ShiftID,
		Category:        m.Category,
		Description:     m.Description,
		Amount:          m.Amount,
		Date:            m.Date,
		PaymentMethodID: m.PaymentMethodID,
		ReceiptRef:      m.ReceiptRef,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
	}
}

type userModel struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:20;not null"`
	DriverID     *uint  `gorm:"index"`
	Active       bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toEntity() *entity.User {
	return &entity.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         entity.Role(m.Role),
		DriverID:     m.DriverID,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
