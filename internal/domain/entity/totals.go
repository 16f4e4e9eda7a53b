package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TripTotals are the per-shift trip aggregates
type TripTotals struct {
	Revenue    decimal.Decimal `json:"revenue"`
	MeterTotal decimal.Decimal `json:"meter_total"`
	// Difference is revenue minus meter total, shown in the control view
	Difference   decimal.Decimal `json:"difference"`
	Completed    int             `json:"completed"`
	InProgress   int             `json:"in_progress"`
	Cancelled    int             `json:"cancelled"`
	LastActivity *time.Time      `json:"last_activity,omitempty"`
}

// ShiftTotals combine trip and expense aggregates for one shift
type ShiftTotals struct {
	TripTotals
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
	Distance int             `json:"distance"`
}

// SumTrips aggregates trips; cancelled trips are counted but not summed
func SumTrips(trips []*Trip) TripTotals {
	t := TripTotals{
		Revenue:    decimal.Zero,
		MeterTotal: decimal.Zero,
	}
	for _, trip := range trips {
		if trip.Status == TripCancelled {
			t.Cancelled++
			continue
		}
		if trip.InProgress() {
			t.InProgress++
		} else {
			t.Completed++
		}
		t.Revenue = t.Revenue.Add(trip.AmountCollected)
		t.MeterTotal = t.MeterTotal.Add(trip.MeterPrice)
		if t.LastActivity == nil || trip.PickupTime.After(*t.LastActivity) {
			pickup := trip.PickupTime
			t.LastActivity = &pickup
		}
	}
	t.Difference = t.Revenue.Sub(t.MeterTotal)
	return t
}

// SumExpenses returns the cumulative expense amount
func SumExpenses(expenses []*Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// ComputeShiftTotals derives revenue, costs, net and distance of a shift
func ComputeShiftTotals(shift *Shift, trips []*Trip, expenses []*Expense) ShiftTotals {
	tt := SumTrips(trips)
	costs := SumExpenses(expenses)
	return ShiftTotals{
		TripTotals: tt,
		Expenses:   costs,
		Net:        tt.Revenue.Sub(costs),
		Distance:   shift.Distance(),
	}
}
