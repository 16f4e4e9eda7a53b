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

// OpenShiftInput holds the fields of a new shift
type OpenShiftInput struct {
	DriverID      uint // zero means the caller's own driver record
	VehicleID     uint
	ServiceDate   time.Time // defaults to the day of StartTime
	StartTime     time.Time // defaults to now
	OdometerStart int
	EncodingMode  entity.EncodingMode // defaults to LIVE
}

// ShiftPatch lists the mutable shift fields; nil fields are left untouched
type ShiftPatch struct {
	VehicleID         *uint
	EncodingMode      *entity.EncodingMode
	ServiceDate       *time.Time
	StartTime         *time.Time
	EndTime           *time.Time
	OdometerStart     *int
	OdometerEnd       *int
	InterruptionNotes *string
	DeclaredCash      *decimal.Decimal
	Signature         *string
}

// CloseShiftInput holds the end-of-shift figures
type CloseShiftInput struct {
	EndTime           time.Time // defaults to now
	OdometerEnd       int
	InterruptionNotes string
	DeclaredCash      decimal.Decimal
	Signature         string
}

// ShiftLedger owns the open/close/validate lifecycle of driver shifts
type ShiftLedger struct {
	shifts        repository.ShiftRepository
	trips         repository.TripRepository
	notifications repository.NotificationRepository
	notifier      repository.VehicleChangeNotifier
	locker        repository.DriverLocker
	events        *changeEmitter
	metrics       *metrics.Metrics
	logger        logger.Logger
	now           func() time.Time
}

// NewShiftLedger creates a new shift ledger. notifications, notifier and locker may be nil.
func NewShiftLedger(
	shifts repository.ShiftRepository,
	trips repository.TripRepository,
	publisher repository.EventPublisher,
	notifications repository.NotificationRepository,
	notifier repository.VehicleChangeNotifier,
	locker repository.DriverLocker,
	m *metrics.Metrics,
	logger logger.Logger,
) *ShiftLedger {
	return &ShiftLedger{
		shifts:        shifts,
		trips:         trips,
		notifications: notifications,
		notifier:      notifier,
		locker:        locker,
		events:        newChangeEmitter(publisher, m, logger),
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// OpenShift creates an open shift for the driver. At most one open shift per driver exists.
func (l *ShiftLedger) OpenShift(ctx context.Context, actor entity.Identity, in OpenShiftInput) (*entity.Shift, error) {
	const op = "open_shift"
	if !actor.Can(entity.ActionOpenShift) {
		return nil, entity.ErrForbidden
	}

	driverID := in.DriverID
	if driverID == 0 {
		driverID = actor.DriverID
	}
	if driverID == 0 || in.VehicleID == 0 {
		return nil, entity.ErrInvalidInput
	}
	if driverID != actor.DriverID && !actor.Can(entity.ActionOpenShiftForOther) {
		return nil, entity.ErrForbidden
	}

	mode := in.EncodingMode
	if mode == "" {
		mode = entity.EncodingLive
	}
	if !mode.Valid() {
		return nil, entity.ErrInvalidInput
	}
	if mode == entity.EncodingAdmin && !actor.Can(entity.ActionOpenShiftForOther) {
		return nil, entity.ErrForbidden
	}

	now := l.now()
	start := in.StartTime
	if start.IsZero() {
		start = now
	}
	serviceDate := in.ServiceDate
	if serviceDate.IsZero() {
		serviceDate = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	}

	shift := &entity.Shift{
		DriverID:      driverID,
		VehicleID:     in.VehicleID,
		ServiceDate:   serviceDate,
		EncodingMode:  mode,
		StartTime:     start,
		OdometerStart: in.OdometerStart,
		DeclaredCash:  decimal.Zero,
	}
	if err := shift.CheckInvariants(); err != nil {
		return nil, err
	}

	if l.locker != nil {
		unlock, err := l.locker.LockDriver(ctx, driverID)
		if err != nil {
			return nil, entity.StepError(op, "lock_driver", err)
		}
		defer unlock()
	}

	if err := l.shifts.CreateOpen(ctx, shift); err != nil {
		l.metrics.ErrorsCount.WithLabelValues(op).Inc()
		return nil, entity.StepError(op, "insert_shift", err)
	}

	l.metrics.ShiftsOpened.Inc()
	l.logger.Info("Shift opened",
		"shiftID", shift.ID,
		"driverID", driverID,
		"vehicleID", shift.VehicleID,
		"mode", mode)

	l.events.shiftChanged(ctx, entity.EventInsert, shift, nil)
	return shift, nil
}

// GetActiveShift returns the open shift of the driver, or nil when there is none
func (l *ShiftLedger) GetActiveShift(ctx context.Context, actor entity.Identity, driverID uint) (*entity.Shift, error) {
	if driverID == 0 {
		driverID = actor.DriverID
	}
	if !actor.CanActOn(driverID) {
		return nil, entity.ErrForbidden
	}

	open, err := l.shifts.FindOpenByDriver(ctx, driverID)
	if err != nil {
		return nil, entity.StepError("get_active_shift", "find_open", err)
	}
	if len(open) == 0 {
		return nil, nil
	}

	latest := open[0]
	for _, s := range open[1:] {
		if s.StartTime.After(latest.StartTime) {
			latest = s
		}
	}
	if len(open) > 1 {
		l.logger.Warn("Driver has more than one open shift",
			"driverID", driverID,
			"count", len(open),
			"returnedShiftID", latest.ID)
	}
	return latest, nil
}

// UpdateShift applies a partial update to a shift that is not validated yet
func (l *ShiftLedger) UpdateShift(ctx context.Context, actor entity.Identity, shiftID uint, patch ShiftPatch) (*entity.Shift, error) {
	const op = "update_shift"
	if !actor.Can(entity.ActionUpdateShift) {
		return nil, entity.ErrForbidden
	}

	shift, err := l.loadMutable(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}
	old := shift.Clone()
	open := shift.IsOpen()

	vehicleChanged := false
	if patch.VehicleID != nil {
		if *patch.VehicleID == 0 {
			return nil, entity.ErrInvalidInput
		}
		if *patch.VehicleID != shift.VehicleID {
			if !open {
				return nil, entity.ErrShiftNotOpen
			}
			shift.VehicleID = *patch.VehicleID
			vehicleChanged = true
		}
	}
	if patch.EncodingMode != nil {
		if !patch.EncodingMode.Valid() {
			return nil, entity.ErrInvalidInput
		}
		if *patch.EncodingMode == entity.EncodingAdmin && !actor.Can(entity.ActionOpenShiftForOther) {
			return nil, entity.ErrForbidden
		}
		shift.EncodingMode = *patch.EncodingMode
	}
	if patch.ServiceDate != nil {
		shift.ServiceDate = *patch.ServiceDate
	}
	if patch.StartTime != nil {
		shift.StartTime = *patch.StartTime
	}
	if patch.OdometerStart != nil {
		shift.OdometerStart = *patch.OdometerStart
	}
	// end fields belong to closing; they can only be corrected afterwards
	if patch.EndTime != nil {
		if open {
			return nil, entity.ErrInvalidInput
		}
		shift.EndTime = patch.EndTime
	}
	if patch.OdometerEnd != nil {
		if open {
			return nil, entity.ErrInvalidInput
		}
		trips, err := l.trips.ListByShift(ctx, shift.ID)
		if err != nil {
			return nil, entity.StepError(op, "list_trips", err)
		}
		if belowLastTrip(trips, *patch.OdometerEnd) {
			return nil, entity.ErrOdometerRegression
		}
		shift.OdometerEnd = patch.OdometerEnd
	}
	if patch.InterruptionNotes != nil {
		shift.InterruptionNotes = *patch.InterruptionNotes
	}
	if patch.DeclaredCash != nil {
		shift.DeclaredCash = *patch.DeclaredCash
	}
	if patch.Signature != nil {
		shift.Signature = *patch.Signature
	}

	if err := shift.CheckInvariants(); err != nil {
		return nil, err
	}

	if err := l.shifts.Update(ctx, shift); err != nil {
		l.metrics.ErrorsCount.WithLabelValues(op).Inc()
		return nil, entity.StepError(op, "save_shift", err)
	}

	l.events.shiftChanged(ctx, entity.EventUpdate, shift, old)
	if vehicleChanged {
		l.vehicleChanged(ctx, actor, shift, old.VehicleID)
	}
	return shift, nil
}

// CloseShift records the end-of-shift figures; the shift stays unvalidated
func (l *ShiftLedger) CloseShift(ctx context.Context, actor entity.Identity, shiftID uint, in CloseShiftInput) (*entity.Shift, error) {
	const op = "close_shift"
	if !actor.Can(entity.ActionCloseShift) {
		return nil, entity.ErrForbidden
	}

	shift, err := l.loadMutable(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}
	if !shift.IsOpen() {
		return nil, entity.ErrShiftNotOpen
	}

	trips, err := l.trips.ListByShift(ctx, shift.ID)
	if err != nil {
		return nil, entity.StepError(op, "list_trips", err)
	}
	for _, t := range trips {
		if t.InProgress() {
			return nil, entity.StepError(op, "check_trips", entity.ErrTripsInProgress)
		}
	}
	if belowLastTrip(trips, in.OdometerEnd) {
		return nil, entity.ErrOdometerRegression
	}

	old := shift.Clone()
	end := in.EndTime
	if end.IsZero() {
		end = l.now()
	}
	odometerEnd := in.OdometerEnd
	shift.EndTime = &end
	shift.OdometerEnd = &odometerEnd
	shift.InterruptionNotes = in.InterruptionNotes
	shift.DeclaredCash = in.DeclaredCash
	shift.Signature = in.Signature

	if err := shift.CheckInvariants(); err != nil {
		return nil, err
	}

	if err := l.shifts.Update(ctx, shift); err != nil {
		l.metrics.ErrorsCount.WithLabelValues(op).Inc()
		return nil, entity.StepError(op, "save_shift", err)
	}

	l.metrics.ShiftsClosed.Inc()
	l.logger.Info("Shift closed",
		"shiftID", shift.ID,
		"driverID", shift.DriverID,
		"distance", shift.Distance())

	l.events.shiftChanged(ctx, entity.EventUpdate, shift, old)
	return shift, nil
}

// belowLastTrip reports whether odometerEnd is under a drop-off reading of a kept trip
func belowLastTrip(trips []*entity.Trip, odometerEnd int) bool {
	for _, t := range trips {
		if t.Status != entity.TripCancelled && t.OdometerEnd != nil && *t.OdometerEnd > odometerEnd {
			return true
		}
	}
	return false
}

// ValidateShift signs off a closed shift. Validated is terminal.
func (l *ShiftLedger) ValidateShift(ctx context.Context, actor entity.Identity, shiftID uint) (*entity.Shift, error) {
	const op = "validate_shift"
	if !actor.Can(entity.ActionValidateShift) {
		return nil, entity.ErrForbidden
	}

	shift, err := l.loadMutable(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.State() != entity.ShiftClosed {
		return nil, entity.ErrShiftNotClosed
	}

	old := shift.Clone()
	now := l.now()
	validator := actor.UserID
	shift.Validated = true
	shift.ValidatedAt = &now
	shift.ValidatedBy = &validator

	if err := l.shifts.Update(ctx, shift); err != nil {
		l.metrics.ErrorsCount.WithLabelValues(op).Inc()
		return nil, entity.StepError(op, "save_shift", err)
	}

	l.metrics.ShiftsValidated.Inc()
	l.logger.Info("Shift validated",
		"shiftID", shift.ID,
		"validatedBy", validator)

	l.events.shiftChanged(ctx, entity.EventUpdate, shift, old)
	return shift, nil
}

// ChangeVehicle reassigns the vehicle of an open shift and notifies the administrators
func (l *ShiftLedger) ChangeVehicle(ctx context.Context, actor entity.Identity, shiftID, newVehicleID uint) (*entity.Shift, error) {
	const op = "change_vehicle"
	if !actor.Can(entity.ActionChangeVehicle) {
		return nil, entity.ErrForbidden
	}
	if newVehicleID == 0 {
		return nil, entity.ErrInvalidInput
	}

	shift, err := l.loadMutable(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}
	if !shift.IsOpen() {
		return nil, entity.ErrShiftNotOpen
	}
	if shift.VehicleID == newVehicleID {
		return nil, entity.ErrSameVehicle
	}

	old := shift.Clone()
	shift.VehicleID = newVehicleID
	if err := l.shifts.Update(ctx, shift); err != nil {
		l.metrics.ErrorsCount.WithLabelValues(op).Inc()
		return nil, entity.StepError(op, "save_shift", err)
	}

	l.events.shiftChanged(ctx, entity.EventUpdate, shift, old)
	l.vehicleChanged(ctx, actor, shift, old.VehicleID)
	return shift, nil
}

// loadMutable fetches a shift the actor may act on and that is not validated
func (l *ShiftLedger) loadMutable(ctx context.Context, actor entity.Identity, shiftID uint) (*entity.Shift, error) {
	shift, err := l.shifts.FindByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(shift.DriverID) {
		return nil, entity.ErrForbidden
	}
	if shift.Validated {
		return nil, entity.ErrShiftValidated
	}
	return shift, nil
}

// vehicleChanged stores, pushes and mails the notification. Delivery is at-most-once.
func (l *ShiftLedger) vehicleChanged(ctx context.Context, actor entity.Identity, shift *entity.Shift, oldVehicleID uint) {
	n := &entity.VehicleChangeNotification{
		DriverID:     shift.DriverID,
		OldVehicleID: oldVehicleID,
		NewVehicleID: shift.VehicleID,
		ShiftID:      shift.ID,
		ChangedBy:    actor.UserID,
		Timestamp:    l.now(),
	}
	l.metrics.VehicleChanges.Inc()

	if l.notifications != nil {
		if err := l.notifications.Save(ctx, n); err != nil {
			l.metrics.ErrorsCount.WithLabelValues("save_notification").Inc()
			l.logger.Error("Failed to store vehicle change notification",
				"shiftID", shift.ID,
				"error", err)
		}
	}

	l.events.emit(ctx, entity.EventInsert, entity.EntityVehicleChange, shift.ID, entity.Snapshot{Notification: n}, nil)

	if l.notifier != nil {
		if err := l.notifier.NotifyVehicleChange(ctx, n); err != nil {
			l.metrics.ErrorsCount.WithLabelValues("notify_vehicle_change").Inc()
			l.logger.Error("Failed to deliver vehicle change notification",
				"shiftID", shift.ID,
				"error", err)
		}
	}

	l.logger.Info("Vehicle changed",
		"shiftID", shift.ID,
		"driverID", shift.DriverID,
		"oldVehicleID", oldVehicleID,
		"newVehicleID", shift.VehicleID)
}
