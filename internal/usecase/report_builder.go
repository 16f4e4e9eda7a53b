package usecase

import (
	"context"
	"time"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/pkg/logger"
)

// TripsPerPage is the number of trips printed on one report page
const TripsPerPage = 12

// ShiftReport is the fully populated shift read by the report generator
type ShiftReport struct {
	Shift    *entity.Shift      `json:"shift"`
	Trips    []*entity.Trip     `json:"trips"`
	Expenses []*entity.Expense  `json:"expenses"`
	Totals   entity.ShiftTotals `json:"totals"`
	// Pages splits Trips in chunks of TripsPerPage; the first page always exists
	Pages     [][]*entity.Trip `json:"pages"`
	MultiPage bool             `json:"multi_page"`
	Final     bool             `json:"final"`
}

// ReportBuilder assembles shift reports (feuille de route)
type ReportBuilder struct {
	shifts   repository.ShiftRepository
	trips    repository.TripRepository
	expenses repository.ExpenseRepository
	logger   logger.Logger
}

// NewReportBuilder creates a new report builder
func NewReportBuilder(
	shifts repository.ShiftRepository,
	trips repository.TripRepository,
	expenses repository.ExpenseRepository,
	logger logger.Logger,
) *ReportBuilder {
	return &ReportBuilder{
		shifts:   shifts,
		trips:    trips,
		expenses: expenses,
		logger:   logger,
	}
}

// Build loads the shift with its trips and expenses and computes the totals
func (b *ReportBuilder) Build(ctx context.Context, actor entity.Identity, shiftID uint) (*ShiftReport, error) {
	shift, err := readableShift(ctx, b.shifts, actor, shiftID)
	if err != nil {
		return nil, err
	}
	trips, err := b.trips.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, entity.StepError("build_report", "list_trips", err)
	}
	expenses, err := b.expenses.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, entity.StepError("build_report", "list_expenses", err)
	}

	pages := paginateTrips(trips, TripsPerPage)
	return &ShiftReport{
		Shift:     shift,
		Trips:     trips,
		Expenses:  expenses,
		Totals:    entity.ComputeShiftTotals(shift, trips, expenses),
		Pages:     pages,
		MultiPage: len(pages) > 1,
		Final:     shift.Validated,
	}, nil
}

func paginateTrips(trips []*entity.Trip, size int) [][]*entity.Trip {
	pages := [][]*entity.Trip{{}}
	for i, t := range trips {
		if i > 0 && i%size == 0 {
			pages = append(pages, []*entity.Trip{})
		}
		last := len(pages) - 1
		pages[last] = append(pages[last], t)
	}
	return pages
}

var (
	reportTripColumns = []string{
		"order", "status", "pickup_time", "pickup_location", "odometer_start",
		"dropoff_time", "dropoff_location", "odometer_end", "meter_price", "amount_collected",
	}
	reportExpenseColumns = []string{"date", "category", "description", "amount", "receipt"}
)

// optionalInt leaves the cell empty when the reading is missing
func optionalInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

// ExportXLSX renders the report as a workbook with a summary, trips and expenses sheet
func (b *ReportBuilder) ExportXLSX(report *ShiftReport) ([]byte, error) {
	if report == nil || report.Shift == nil {
		return nil, entity.ErrInvalidInput
	}
	s := report.Shift
	t := report.Totals

	summary := [][]interface{}{
		{"shift_id", s.ID},
		{"driver_id", s.DriverID},
		{"vehicle_id", s.VehicleID},
		{"service_date", s.ServiceDate.Format("2006-01-02")},
		{"encoding_mode", string(s.EncodingMode)},
		{"state", string(s.State())},
		{"start_time", s.StartTime.Format(time.RFC3339)},
		{"end_time", formatOptionalTime(s.EndTime)},
		{"odometer_start", s.OdometerStart},
		{"odometer_end", optionalInt(s.OdometerEnd)},
		{"distance", t.Distance},
		{"revenue", t.Revenue},
		{"meter_total", t.MeterTotal},
		{"difference", t.Difference},
		{"expenses", t.Expenses},
		{"net", t.Net},
		{"declared_cash", s.DeclaredCash},
		{"pages", len(report.Pages)},
	}

	trips := make([][]interface{}, 0, len(report.Trips))
	for _, trip := range report.Trips {
		trips = append(trips, []interface{}{
			trip.OrderIndex,
			string(trip.Status),
			trip.PickupTime.Format(time.RFC3339),
			trip.PickupLocation,
			trip.OdometerStart,
			formatOptionalTime(trip.DropoffTime),
			trip.DropoffLocation,
			optionalInt(trip.OdometerEnd),
			trip.MeterPrice,
			trip.AmountCollected,
		})
	}

	expenses := make([][]interface{}, 0, len(report.Expenses))
	for _, e := range report.Expenses {
		expenses = append(expenses, []interface{}{
			e.Date.Format("2006-01-02"),
			e.Category,
			e.Description,
			e.Amount,
			e.ReceiptRef,
		})
	}

	return renderXLSX(
		sheet{name: "Shift", headings: []string{"field", "value"}, rows: summary},
		sheet{name: "Trips", headings: reportTripColumns, rows: trips},
		sheet{name: "Expenses", headings: reportExpenseColumns, rows: expenses},
	)
}
