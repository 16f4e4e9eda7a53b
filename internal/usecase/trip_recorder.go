package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/pkg/logger"
	"txapp-service/pkg/metrics"
)

// TripStartInput holds the pickup side of a trip
type TripStartInput struct {
	ShiftID         uint
	OrderIndex      int // zero assigns the next index of the shift
	OdometerStart   int
	PickupLocation  string
	PickupTime      time.Time // defaults to now
	ClientID        *uint
	PaymentMethodID *uint
	OffSchedule     bool
	Notes           string
}

// TripEndInput holds the drop-off side of a trip
type TripEndInput struct {
	OdometerEnd     int
	DropoffLocation string
	DropoffTime     time.Time // defaults to now
	MeterPrice      decimal.Decimal
	AmountCollected decimal.Decimal
	PaymentMethodID *uint
}

// TripRecorder appends and completes trips on open shifts
type TripRecorder struct {
	shifts  repository.ShiftRepository
	trips   repository.TripRepository
	events  *changeEmitter
	metrics *metrics.Metrics
	logger  logger.Logger
	now     func() time.Time
}

// NewTripRecorder creates a new trip recorder
func NewTripRecorder(
	shifts repository.ShiftRepository,
	trips repository.TripRepository,
	publisher repository.EventPublisher,
	m *metrics.Metrics,
	logger logger.Logger,
) *TripRecorder {
	return &TripRecorder{
		shifts:  shifts,
		trips:   trips,
		events:  newChangeEmitter(publisher, m, logger),
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// LogTripStart creates an in-progress trip on an open shift
func (r *TripRecorder) LogTripStart(ctx context.Context, actor entity.Identity, in TripStartInput) (*entity.Trip, error) {
	const op = "log_trip_start"
	if !actor.Can(entity.ActionLogTrip) {
		return nil, entity.ErrForbidden
	}
	if in.OrderIndex < 0 || in.PickupLocation == "" {
		return nil, entity.ErrInvalidInput
	}

	shift, err := r.openShift(ctx, actor, in.ShiftID)
	if err != nil {
		return nil, err
	}
	if in.OdometerStart < shift.OdometerStart {
		return nil, entity.ErrOdometerRegression
	}

	pickup := in.PickupTime
	if pickup.IsZero() {
		pickup = r.now()
	}
	trip := &entity.Trip{
		ShiftID:         shift.ID,
		ClientID:        in.ClientID,
		PaymentMethodID: in.PaymentMethodID,
		OrderIndex:      in.OrderIndex,
		OdometerStart:   in.OdometerStart,
		PickupLocation:  in.PickupLocation,
		PickupTime:      pickup,
		MeterPrice:      decimal.Zero,
		AmountCollected: decimal.Zero,
		OffSchedule:     in.OffSchedule,
		Notes:           in.Notes,
		Status:          entity.TripInProgress,
	}
	if err := r.trips.Create(ctx, trip); err != nil {
		r.metrics.ErrorsCount.WithLabelValues(op).Inc()
		return nil, entity.StepError(op, "insert_trip", err)
	}

	r.metrics.TripsLogged.Inc()
	r.logger.Info("Trip started",
		"tripID", trip.ID,
		"shiftID", shift.ID,
		"order", trip.OrderIndex)

	r.events.tripChanged(ctx, entity.EventInsert, trip, nil)
	return trip, nil
}

// LogTripEnd fills the drop-off fields and completes the trip
func (r *TripRecorder) LogTripEnd(ctx context.Context, actor entity.Identity, tripID uint, in TripEndInput) (*entity.Trip, error) {
	const op = "log_trip_end"
	if !actor.Can(entity.ActionLogTrip) {
		return nil, entity.ErrForbidden
	}

	trip, err := r.trips.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if _, err := r.openShift(ctx, actor, trip.ShiftID); err != nil {
		return nil, err
	}
	if !trip.InProgress() {
		return nil, entity.ErrTripCompleted
	}
	if in.OdometerEnd < trip.OdometerStart {
		return nil, entity.ErrOdometerRegression
	}
	if in.MeterPrice.IsNegative() || in.AmountCollected.IsNegative() {
		return nil, entity.ErrNegativeAmount
	}
	dropoff := in.DropoffTime
	if dropoff.IsZero() {
		dropoff = r.now()
	}
	if dropoff.Before(trip.PickupTime) {
		return nil, entity.ErrEndBeforeStart
	}

	old := trip.Clone()
	odometerEnd := in.OdometerEnd
	trip.OdometerEnd = &odometerEnd
	trip.DropoffLocation = in.DropoffLocation
	trip.DropoffTime = &dropoff
	trip.MeterPrice = in.MeterPrice
	trip.AmountCollected = in.AmountCollected
	if in.PaymentMethodID != nil {
		trip.PaymentMethodID = in.PaymentMethodID
	}
	trip.Status = entity.TripCompleted

	if err := r.trips.Update(ctx, trip); err != nil {
		r.metrics.ErrorsCount.WithLabelValues(op).Inc()
		return nil, entity.StepError(op, "save_trip", err)
	}

	r.logger.Info("Trip completed",
		"tripID", trip.ID,
		"shiftID", trip.ShiftID,
		"amount", trip.AmountCollected.String())

	r.events.tripChanged(ctx, entity.EventUpdate, trip, old)
	return trip, nil
}

// CancelTrip labels a trip as cancelled. The row is kept and excluded from totals.
func (r *TripRecorder) CancelTrip(ctx context.Context, actor entity.Identity, tripID uint) (*entity.Trip, error) {
	const op = "cancel_trip"
	if !actor.Can(entity.ActionLogTrip) {
		return nil, entity.ErrForbidden
	}

	trip, err := r.trips.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if _, err := r.openShift(ctx, actor, trip.ShiftID); err != nil {
		return nil, err
	}
	if trip.Status == entity.TripCancelled {
		return trip, nil
	}

	old := trip.Clone()
	trip.Status = entity.TripCancelled
	if err := r.trips.Update(ctx, trip); err != nil {
		r.metrics.ErrorsCount.WithLabelValues(op).Inc()
		return nil, entity.StepError(op, "save_trip", err)
	}

	r.logger.Info("Trip cancelled", "tripID", trip.ID, "shiftID", trip.ShiftID)
	r.events.tripChanged(ctx, entity.EventUpdate, trip, old)
	return trip, nil
}

// ListTrips returns the trips of a shift in ascending order
func (r *TripRecorder) ListTrips(ctx context.Context, actor entity.Identity, shiftID uint) ([]*entity.Trip, error) {
	if _, err := readableShift(ctx, r.shifts, actor, shiftID); err != nil {
		return nil, err
	}
	return r.trips.ListByShift(ctx, shiftID)
}

// ComputeShiftTripTotals sums revenue and meter total of the shift's trips
func (r *TripRecorder) ComputeShiftTripTotals(ctx context.Context, actor entity.Identity, shiftID uint) (entity.TripTotals, error) {
	trips, err := r.ListTrips(ctx, actor, shiftID)
	if err != nil {
		return entity.TripTotals{}, err
	}
	return entity.SumTrips(trips), nil
}

// openShift loads a shift that still accepts trips
func (r *TripRecorder) openShift(ctx context.Context, actor entity.Identity, shiftID uint) (*entity.Shift, error) {
	shift, err := r.shifts.FindByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(shift.DriverID) {
		return nil, entity.ErrForbidden
	}
	switch shift.State() {
	case entity.ShiftValidated:
		return nil, entity.ErrShiftValidated
	case entity.ShiftClosed:
		return nil, entity.ErrShiftNotOpen
	}
	return shift, nil
}

// readableShift loads a shift the actor may look at
func readableShift(ctx context.Context, shifts repository.ShiftRepository, actor entity.Identity, shiftID uint) (*entity.Shift, error) {
	shift, err := shifts.FindByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(shift.DriverID) {
		return nil, entity.ErrForbidden
	}
	return shift, nil
}
