package repository

import (
	"context"

	"txapp-service/internal/domain/entity"
)

// EventPublisher pushes lifecycle change events on the realtime channel
type EventPublisher interface {
	Publish(ctx context.Context, event *entity.ChangeEvent) error
}

// ActivityLogRepository is the bounded durable log of change events
type ActivityLogRepository interface {
	// Append stores the event and assigns its sequence number
	Append(ctx context.Context, event *entity.ChangeEvent) error
	Recent(ctx context.Context, limit int) ([]*entity.ChangeEvent, error)
	After(ctx context.Context, seq int64, limit int) ([]*entity.ChangeEvent, error)
}

// NotificationRepository stores vehicle-change notifications with per-consumer offsets
type NotificationRepository interface {
	Save(ctx context.Context, n *entity.VehicleChangeNotification) error
	ListAfter(ctx context.Context, seq int64, limit int) ([]*entity.VehicleChangeNotification, error)
	GetOffset(ctx context.Context, consumer string) (int64, error)
	CommitOffset(ctx context.Context, consumer string, seq int64) error
}

// VehicleChangeNotifier delivers a notification to the administrators, at most once
type VehicleChangeNotifier interface {
	NotifyVehicleChange(ctx context.Context, n *entity.VehicleChangeNotification) error
}

// DriverLocker serialises open-shift attempts of one driver across instances
type DriverLocker interface {
	LockDriver(ctx context.Context, driverID uint) (unlock func(), err error)
}
