package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeShiftTotals(t *testing.T) {
	start := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	end := 60075
	shift := &Shift{OdometerStart: 60000, OdometerEnd: &end}

	trips := []*Trip{
		{AmountCollected: d("50.00"), MeterPrice: d("45.50"), Status: TripCompleted, PickupTime: start.Add(time.Hour)},
		{AmountCollected: d("40.00"), MeterPrice: d("40.00"), Status: TripCompleted, PickupTime: start.Add(3 * time.Hour)},
		{AmountCollected: d("20.00"), MeterPrice: d("18.00"), Status: TripCompleted, PickupTime: start.Add(2 * time.Hour)},
		{AmountCollected: d("99.00"), MeterPrice: d("99.00"), Status: TripCancelled, PickupTime: start.Add(5 * time.Hour)},
		{Status: TripInProgress, PickupTime: start.Add(4 * time.Hour)},
	}
	expenses := []*Expense{
		{Amount: d("75.50")},
		{Amount: d("12.30")},
		{Amount: d("15.00")},
	}

	totals := ComputeShiftTotals(shift, trips, expenses)

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"revenue", totals.Revenue, "110.00"},
		{"meter total", totals.MeterTotal, "103.50"},
		{"difference", totals.Difference, "6.50"},
		{"expenses", totals.Expenses, "102.80"},
		{"net", totals.Net, "7.20"},
	}
	for _, c := range checks {
		if !c.got.Equal(d(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
	if totals.Completed != 3 || totals.InProgress != 1 || totals.Cancelled != 1 {
		t.Errorf("unexpected counts: %+v", totals.TripTotals)
	}
	if totals.Distance != 75 {
		t.Errorf("distance = %d, want 75", totals.Distance)
	}
	if totals.LastActivity == nil || !totals.LastActivity.Equal(start.Add(4*time.Hour)) {
		t.Errorf("last activity = %v, cancelled trips are ignored", totals.LastActivity)
	}
}

func TestSumTrips_Empty(t *testing.T) {
	totals := SumTrips(nil)
	if !totals.Revenue.IsZero() || totals.LastActivity != nil {
		t.Fatalf("unexpected totals for no trips: %+v", totals)
	}
	if !SumExpenses(nil).IsZero() {
		t.Fatalf("expected zero expenses")
	}
}
