package entity

import (
	"errors"
	"fmt"
)

// Precondition violations
var (
	ErrShiftAlreadyOpen = errors.New("shift already open")
	ErrShiftNotFound    = errors.New("shift not found")
	ErrShiftValidated   = errors.New("shift already validated")
	ErrShiftNotOpen     = errors.New("shift is not open")
	ErrShiftNotClosed   = errors.New("shift must be closed before validation")
	ErrSameVehicle      = errors.New("new vehicle is the current vehicle")
	ErrTripNotFound     = errors.New("trip not found")
	ErrTripCompleted    = errors.New("trip is not in progress")
	ErrDuplicateOrder   = errors.New("trip order already used in this shift")
	ErrTripsInProgress  = errors.New("shift has trips in progress")
	ErrNotFound         = errors.New("record not found")
	ErrLockBusy         = errors.New("another operation is in progress for this driver")
)

// Validation failures
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrOdometerRegression = errors.New("end odometer is lower than start odometer")
	ErrEndBeforeStart     = errors.New("end time is not after start time")
	ErrNegativeAmount     = errors.New("amount must not be negative")
)

// Authorization failures
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// LifecycleError names the operation and the sub-step that failed
type LifecycleError struct {
	Op   string
	Step string
	Err  error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Step, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

// StepError wraps err with op/step unless it is nil
func StepError(op, step string, err error) error {
	if err == nil {
		return nil
	}
	return &LifecycleError{Op: op, Step: step, Err: err}
}

// IsPrecondition reports whether err is a lifecycle precondition violation
func IsPrecondition(err error) bool {
	for _, target := range []error{
		ErrShiftAlreadyOpen, ErrShiftValidated, ErrShiftNotOpen, ErrShiftNotClosed,
		ErrSameVehicle, ErrTripCompleted, ErrDuplicateOrder, ErrTripsInProgress, ErrLockBusy,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation reports whether err is a field validation failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrOdometerRegression) ||
		errors.Is(err, ErrEndBeforeStart) ||
		errors.Is(err, ErrNegativeAmount)
}

// IsNotFound reports whether err means the record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShiftNotFound) || errors.Is(err, ErrTripNotFound) || errors.Is(err, ErrNotFound)
}
