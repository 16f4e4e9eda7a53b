package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"txapp-service/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLogTripStart_OrderIndexIsUniquePerShift(t *testing.T) {
	lc := newLifecycle()
	ctx := context.Background()
	actor := driverIdentity(5)
	s := lc.openShift(5, 1000, "06:00")

	for i := 0; i < 3; i++ {
		trip, err := lc.tripRecorder.LogTripStart(ctx, actor, TripStartInput{ShiftID: s.ID, OdometerStart: 1000 + i, PickupLocation: "Gare"})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := lc.tripRecorder.LogTripEnd(ctx, actor, trip.ID, TripEndInput{OdometerEnd: 1001 + i, DropoffTime: trip.PickupTime}); err != nil {
			t.Fatal(err)
		}
	}

	_, err := lc.tripRecorder.LogTripStart(ctx, actor, TripStartInput{ShiftID: s.ID, OrderIndex: 2, OdometerStart: 1003, PickupLocation: "Gare"})
	if !errors.Is(err, entity.ErrDuplicateOrder) {
		t.Fatalf("expected duplicate order, got %v", err)
	}

	trips, err := lc.tripRecorder.ListTrips(ctx, actor, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[int]bool{}
	for i, trip := range trips {
		if seen[trip.OrderIndex] {
			t.Fatalf("order %d used twice", trip.OrderIndex)
		}
		seen[trip.OrderIndex] = true
		if trip.OrderIndex != i+1 {
			t.Fatalf("expected ascending order %d, got %d", i+1, trip.OrderIndex)
		}
	}
}

func TestLogTripEnd_Rules(t *testing.T) {
	ctx := context.Background()
	actor := driverIdentity(5)

	cases := []struct {
		name string
		in   TripEndInput
		want error
	}{
		{"odometer regression", TripEndInput{OdometerEnd: 1009, DropoffTime: at("07:00")}, entity.ErrOdometerRegression},
		{"negative amount", TripEndInput{OdometerEnd: 1020, DropoffTime: at("07:00"), AmountCollected: dec("-1")}, entity.ErrNegativeAmount},
		{"negative meter", TripEndInput{OdometerEnd: 1020, DropoffTime: at("07:00"), MeterPrice: dec("-0.01")}, entity.ErrNegativeAmount},
		{"drop-off before pickup", TripEndInput{OdometerEnd: 1020, DropoffTime: at("06:10")}, entity.ErrEndBeforeStart},
		{"complete", TripEndInput{OdometerEnd: 1010, DropoffTime: at("07:00"), MeterPrice: dec("12.40"), AmountCollected: dec("13")}, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lc := newLifecycle()
			s := lc.openShift(5, 1000, "06:00")
			trip, err := lc.tripRecorder.LogTripStart(ctx, actor, TripStartInput{ShiftID: s.ID, OdometerStart: 1010, PickupLocation: "Gare", PickupTime: at("06:30")})
			if err != nil {
				t.Fatal(err)
			}
			done, err := lc.tripRecorder.LogTripEnd(ctx, actor, trip.ID, c.in)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
			if c.want == nil {
				if done.Status != entity.TripCompleted || done.Distance() != 0 {
					t.Fatalf("unexpected trip: %+v", done)
				}
				if _, err := lc.tripRecorder.LogTripEnd(ctx, actor, trip.ID, c.in); !errors.Is(err, entity.ErrTripCompleted) {
					t.Fatalf("second completion must fail, got %v", err)
				}
			}
		})
	}
}

func TestLogTripStart_Rules(t *testing.T) {
	ctx := context.Background()

	lc := newLifecycle()
	s := lc.openShift(5, 1000, "06:00")

	if _, err := lc.tripRecorder.LogTripStart(ctx, driverIdentity(5), TripStartInput{ShiftID: s.ID, OdometerStart: 999, PickupLocation: "Gare"}); !errors.Is(err, entity.ErrOdometerRegression) {
		t.Fatalf("trip cannot start below the shift odometer, got %v", err)
	}
	if _, err := lc.tripRecorder.LogTripStart(ctx, driverIdentity(5), TripStartInput{ShiftID: s.ID, OdometerStart: 1000}); !errors.Is(err, entity.ErrInvalidInput) {
		t.Fatalf("pickup location is required, got %v", err)
	}
	if _, err := lc.tripRecorder.LogTripStart(ctx, driverIdentity(6), TripStartInput{ShiftID: s.ID, OdometerStart: 1000, PickupLocation: "Gare"}); !errors.Is(err, entity.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := lc.tripRecorder.LogTripStart(ctx, controllerIdentity, TripStartInput{ShiftID: s.ID, OdometerStart: 1000, PickupLocation: "Gare"}); !errors.Is(err, entity.ErrForbidden) {
		t.Fatalf("controllers do not log trips, got %v", err)
	}
	if _, err := lc.tripRecorder.LogTripStart(ctx, driverIdentity(5), TripStartInput{ShiftID: 99, OdometerStart: 1000, PickupLocation: "Gare"}); !errors.Is(err, entity.ErrShiftNotFound) {
		t.Fatalf("expected shift not found, got %v", err)
	}

	if _, err := lc.ledger.CloseShift(ctx, driverIdentity(5), s.ID, CloseShiftInput{EndTime: at("14:00"), OdometerEnd: 1100}); err != nil {
		t.Fatal(err)
	}
	if _, err := lc.tripRecorder.LogTripStart(ctx, driverIdentity(5), TripStartInput{ShiftID: s.ID, OdometerStart: 1000, PickupLocation: "Gare"}); !errors.Is(err, entity.ErrShiftNotOpen) {
		t.Fatalf("trips are only logged on open shifts, got %v", err)
	}
}

func TestCancelTrip_ExcludedFromTotals(t *testing.T) {
	lc := newLifecycle()
	ctx := context.Background()
	actor := driverIdentity(5)
	s := lc.openShift(5, 1000, "06:00")

	var ids []uint
	for i, amount := range []string{"30", "25"} {
		trip, err := lc.tripRecorder.LogTripStart(ctx, actor, TripStartInput{ShiftID: s.ID, OdometerStart: 1000 + i*10, PickupLocation: "Gare", PickupTime: at("07:00")})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := lc.tripRecorder.LogTripEnd(ctx, actor, trip.ID, TripEndInput{OdometerEnd: 1005 + i*10, DropoffTime: at("07:30"), AmountCollected: dec(amount), MeterPrice: dec(amount)}); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, trip.ID)
	}

	cancelled, err := lc.tripRecorder.CancelTrip(ctx, actor, ids[1])
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.Status != entity.TripCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	totals, err := lc.tripRecorder.ComputeShiftTripTotals(ctx, actor, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !totals.Revenue.Equal(dec("30")) || totals.Completed != 1 || totals.Cancelled != 1 {
		t.Fatalf("unexpected totals: %+v", totals)
	}

	trips, _ := lc.tripRecorder.ListTrips(ctx, actor, s.ID)
	if len(trips) != 2 {
		t.Fatalf("cancel must not delete the row, got %d trips", len(trips))
	}
}
