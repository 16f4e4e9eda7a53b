package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActiveShiftView is one row of the admin oversight projection
type ActiveShiftView struct {
	ShiftID        uint            `json:"shift_id"`
	DriverID       uint            `json:"driver_id"`
	VehicleID      uint            `json:"vehicle_id"`
	State          ShiftState      `json:"state"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        *time.Time      `json:"end_time,omitempty"`
	ActiveTrips    int             `json:"active_trips"`
	CompletedTrips int             `json:"completed_trips"`
	Revenue        decimal.Decimal `json:"revenue"`
	Expenses       decimal.Decimal `json:"expenses"`
	Net            decimal.Decimal `json:"net"`
	Elapsed        time.Duration   `json:"elapsed"`
	LastActivity   *time.Time      `json:"last_activity,omitempty"`
	RevenuePerHour decimal.Decimal `json:"revenue_per_hour"`
}

// DriverRate is the revenue-per-hour of one driver across open shifts
type DriverRate struct {
	DriverID       uint            `json:"driver_id"`
	RevenuePerHour decimal.Decimal `json:"revenue_per_hour"`
}

// FleetMetrics aggregates the active-shift projection
type FleetMetrics struct {
	ActiveShifts       int             `json:"active_shifts"`
	ActiveTrips        int             `json:"active_trips"`
	CompletedTrips     int             `json:"completed_trips"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	NetRevenue         decimal.Decimal `json:"net_revenue"`
	AvgRevenuePerShift decimal.Decimal `json:"avg_revenue_per_shift"`
	AvgTripsPerShift   decimal.Decimal `json:"avg_trips_per_shift"`
	DriverRates        []DriverRate    `json:"driver_rates"`
	ComputedAt         time.Time       `json:"computed_at"`
}
