// internal/domain/entity/shift.go
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EncodingMode tells how the shift figures were entered
type EncodingMode string

const (
	EncodingLive      EncodingMode = "LIVE"
	EncodingUlterieur EncodingMode = "ULTERIEUR"
	EncodingAdmin     EncodingMode = "ADMIN"
)

// Valid reports whether m is one of the known encoding modes
func (m EncodingMode) Valid() bool {
	switch m {
	case EncodingLive, EncodingUlterieur, EncodingAdmin:
		return true
	}
	return false
}

// ShiftState is derived from the validated flag and the end time
type ShiftState string

const (
	ShiftOpen      ShiftState = "OPEN"
	ShiftClosed    ShiftState = "CLOSED"
	ShiftValidated ShiftState = "VALIDATED"
)

// Shift is one driver's working period with one vehicle (feuille de route)
type Shift struct {
	ID                uint            `json:"id"`
	DriverID          uint            `json:"driver_id"`
	VehicleID         uint            `json:"vehicle_id"`
	ServiceDate       time.Time       `json:"service_date"`
	EncodingMode      EncodingMode    `json:"encoding_mode"`
	StartTime         time.Time       `json:"start_time"`
	EndTime           *time.Time      `json:"end_time,omitempty"`
	OdometerStart     int             `json:"odometer_start"`
	OdometerEnd       *int            `json:"odometer_end,omitempty"`
	InterruptionNotes string          `json:"interruption_notes,omitempty"`
	DeclaredCash      decimal.Decimal `json:"declared_cash"`
	Validated         bool            `json:"validated"`
	ValidatedAt       *time.Time      `json:"validated_at,omitempty"`
	ValidatedBy       *uint           `json:"validated_by,omitempty"`
	Signature         string          `json:"signature,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// State returns the lifecycle state of the shift
func (s *Shift) State() ShiftState {
	switch {
	case s.Validated:
		return ShiftValidated
	case s.EndTime != nil:
		return ShiftClosed
	default:
		return ShiftOpen
	}
}

// IsOpen reports whether trips can still be attached to the shift
func (s *Shift) IsOpen() bool {
	return s.State() == ShiftOpen
}

// Distance is odometer-end minus odometer-start, zero while the shift is open
func (s *Shift) Distance() int {
	if s.OdometerEnd == nil {
		return 0
	}
	return *s.OdometerEnd - s.OdometerStart
}

// CheckInvariants validates the odometer and time ordering of the shift
func (s *Shift) CheckInvariants() error {
	if s.OdometerStart < 0 {
		return ErrInvalidInput
	}
	if s.OdometerEnd != nil && *s.OdometerEnd < s.OdometerStart {
		return ErrOdometerRegression
	}
	if s.EndTime != nil && !s.EndTime.After(s.StartTime) {
		return ErrEndBeforeStart
	}
	if s.DeclaredCash.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// Clone returns a deep copy, used as the "previous" record of change events
func (s *Shift) Clone() *Shift {
	if s == nil {
		return nil
	}
	c := *s
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	if s.OdometerEnd != nil {
		o := *s.OdometerEnd
		c.OdometerEnd = &o
	}
	if s.ValidatedAt != nil {
		t := *s.ValidatedAt
		c.ValidatedAt = &t
	}
	if s.ValidatedBy != nil {
		v := *s.ValidatedBy
		c.ValidatedBy = &v
	}
	return &c
}
