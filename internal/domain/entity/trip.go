// internal/domain/entity/trip.go
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TripStatus is the soft status label of a trip (course)
type TripStatus string

const (
	TripInProgress TripStatus = "IN_PROGRESS"
	TripCompleted  TripStatus = "COMPLETED"
	TripCancelled  TripStatus = "CANCELLED"
)

// Trip is one passenger journey within a shift (course)
type Trip struct {
	ID              uint            `json:"id"`
	ShiftID         uint            `json:"shift_id"`
	ClientID        *uint           `json:"client_id,omitempty"`
	PaymentMethodID *uint           `json:"payment_method_id,omitempty"`
	OrderIndex      int             `json:"order_index"`
	OdometerStart   int             `json:"odometer_start"`
	PickupLocation  string          `json:"pickup_location"`
	PickupTime      time.Time       `json:"pickup_time"`
	OdometerEnd     *int            `json:"odometer_end,omitempty"`
	DropoffLocation string          `json:"dropoff_location,omitempty"`
	DropoffTime     *time.Time      `json:"dropoff_time,omitempty"`
	MeterPrice      decimal.Decimal `json:"meter_price"`
	AmountCollected decimal.Decimal `json:"amount_collected"`
	OffSchedule     bool            `json:"off_schedule"`
	Notes           string          `json:"notes,omitempty"`
	Status          TripStatus      `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// InProgress reports whether the drop-off is still missing
func (t *Trip) InProgress() bool {
	return t.Status == TripInProgress
}

// Distance is the trip odometer delta, zero while in progress
func (t *Trip) Distance() int {
	if t.OdometerEnd == nil {
		return 0
	}
	return *t.OdometerEnd - t.OdometerStart
}

// Clone returns a deep copy of the trip
func (t *Trip) Clone() *Trip {
	if t == nil {
		return nil
	}
	c := *t
	if t.ClientID != nil {
		v := *t.ClientID
		c.ClientID = &v
	}
	if t.PaymentMethodID != nil {
		v := *t.PaymentMethodID
		c.PaymentMethodID = &v
	}
	if t.OdometerEnd != nil {
		v := *t.OdometerEnd
		c.OdometerEnd = &v
	}
	if t.DropoffTime != nil {
		v := *t.DropoffTime
		c.DropoffTime = &v
	}
	return &c
}
