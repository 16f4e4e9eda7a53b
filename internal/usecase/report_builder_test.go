package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"txapp-service/internal/domain/entity"
)

func TestReportBuilder_Pagination(t *testing.T) {
	cases := []struct {
		name  string
		trips int
		pages []int
	}{
		{"no trips", 0, []int{0}},
		{"single page", 12, []int{12}},
		{"continuation page", 13, []int{12, 1}},
		{"three pages", 25, []int{12, 12, 1}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lc := newLifecycle()
			ctx := context.Background()
			s := lc.openShift(5, 1000, "06:00")
			for i := 0; i < c.trips; i++ {
				if _, err := lc.tripRecorder.LogTripStart(ctx, driverIdentity(5), TripStartInput{ShiftID: s.ID, OdometerStart: 1000 + i, PickupLocation: "Gare"}); err != nil {
					t.Fatal(err)
				}
			}

			b := NewReportBuilder(lc.shifts, lc.trips, lc.expenses, newTestLogger())
			report, err := b.Build(ctx, driverIdentity(5), s.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(report.Pages) != len(c.pages) {
				t.Fatalf("expected %d pages, got %d", len(c.pages), len(report.Pages))
			}
			for i, n := range c.pages {
				if len(report.Pages[i]) != n {
					t.Errorf("page %d: expected %d trips, got %d", i+1, n, len(report.Pages[i]))
				}
			}
			if report.MultiPage != (len(c.pages) > 1) {
				t.Errorf("unexpected multi-page flag %v", report.MultiPage)
			}
			if c.trips > 0 && report.Pages[0][0].OrderIndex != 1 {
				t.Errorf("first page must start with trip 1")
			}
		})
	}
}

func TestReportBuilder_TotalsAndExport(t *testing.T) {
	lc := newLifecycle()
	ctx := context.Background()
	driver := driverIdentity(5)
	s := lc.openShift(5, 60000, "06:00")

	trip, err := lc.tripRecorder.LogTripStart(ctx, driver, TripStartInput{ShiftID: s.ID, OdometerStart: 60000, PickupLocation: "Gare du Nord", PickupTime: at("06:30")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lc.tripRecorder.LogTripEnd(ctx, driver, trip.ID, TripEndInput{OdometerEnd: 60025, DropoffLocation: "Aéroport", DropoffTime: at("07:15"), MeterPrice: dec("45.50"), AmountCollected: dec("50.00")}); err != nil {
		t.Fatal(err)
	}
	if _, err := lc.expenseLog.LogExpense(ctx, driver, ExpenseInput{ShiftID: s.ID, Category: "Carburant", Amount: dec("75.50")}); err != nil {
		t.Fatal(err)
	}
	if _, err := lc.ledger.CloseShift(ctx, driver, s.ID, CloseShiftInput{EndTime: at("14:30"), OdometerEnd: 60075}); err != nil {
		t.Fatal(err)
	}

	b := NewReportBuilder(lc.shifts, lc.trips, lc.expenses, newTestLogger())
	if _, err := b.Build(ctx, driverIdentity(6), s.ID); !errors.Is(err, entity.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	report, err := b.Build(ctx, controllerIdentity, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if report.Final {
		t.Errorf("closed shift report is not final")
	}
	if report.Totals.Distance != 75 || !report.Totals.Net.Equal(dec("-25.50")) || !report.Totals.Difference.Equal(dec("4.50")) {
		t.Fatalf("unexpected totals: %+v", report.Totals)
	}

	data, err := b.ExportXLSX(report)
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	location, _ := f.GetCellValue("Trips", "D2")
	if location != "Gare du Nord" {
		t.Fatalf("expected pickup location in trips sheet, got %q", location)
	}
	category, _ := f.GetCellValue("Expenses", "B2")
	if category != "Carburant" {
		t.Fatalf("expected expense category, got %q", category)
	}

	rows, err := f.GetRows("Shift")
	if err != nil {
		t.Fatal(err)
	}
	summary := map[string]string{}
	for _, row := range rows[1:] {
		if len(row) == 2 {
			summary[row[0]] = row[1]
		}
	}
	wantSummary := map[string]string{
		"odometer_start": "60000",
		"odometer_end":   "60075",
		"revenue":        "50.00",
		"meter_total":    "45.50",
		"difference":     "4.50",
		"expenses":       "75.50",
		"net":            "-25.50",
	}
	for field, want := range wantSummary {
		if summary[field] != want {
			t.Errorf("summary %s = %q, want %q", field, summary[field], want)
		}
	}

	amounts := []struct {
		sheet, cell, want string
	}{
		{"Trips", "I2", "45.50"},
		{"Trips", "J2", "50.00"},
		{"Expenses", "D2", "75.50"},
	}
	for _, a := range amounts {
		raw, _ := f.GetCellValue(a.sheet, a.cell, excelize.Options{RawCellValue: true})
		if raw != a.want {
			t.Errorf("%s!%s raw value %q, want %q", a.sheet, a.cell, raw, a.want)
		}
	}
}
