package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/pkg/logger"
	"txapp-service/pkg/metrics"
)

// changeEmitter turns committed mutations into change events on the realtime channel.
// A publish failure never fails the mutation that produced it.
type changeEmitter struct {
	publisher repository.EventPublisher
	metrics   *metrics.Metrics
	logger    logger.Logger
	now       func() time.Time
}

func newChangeEmitter(publisher repository.EventPublisher, m *metrics.Metrics, log logger.Logger) *changeEmitter {
	return &changeEmitter{publisher: publisher, metrics: m, logger: log, now: time.Now}
}

func (e *changeEmitter) emit(ctx context.Context, typ entity.EventType, kind entity.EntityType, shiftID uint, record entity.Snapshot, old *entity.Snapshot) {
	if e.publisher == nil {
		return
	}
	event := &entity.ChangeEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		Entity:     kind,
		ShiftID:    shiftID,
		Record:     record,
		Old:        old,
		OccurredAt: e.now(),
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.metrics.ErrorsCount.WithLabelValues("publish_event").Inc()
		e.logger.Error("Failed to publish change event",
			"entity", kind,
			"eventType", typ,
			"shiftID", shiftID,
			"error", err)
		return
	}
	e.metrics.EventsDispatched.WithLabelValues(string(kind), string(typ)).Inc()
}

func (e *changeEmitter) shiftChanged(ctx context.Context, typ entity.EventType, shift, old *entity.Shift) {
	var prev *entity.Snapshot
	if old != nil {
		prev = &entity.Snapshot{Shift: old}
	}
	e.emit(ctx, typ, entity.EntityShift, shift.ID, entity.Snapshot{Shift: shift.Clone()}, prev)
}

func (e *changeEmitter) tripChanged(ctx context.Context, typ entity.EventType, trip, old *entity.Trip) {
	var prev *entity.Snapshot
	if old != nil {
		prev = &entity.Snapshot{Trip: old}
	}
	e.emit(ctx, typ, entity.EntityTrip, trip.ShiftID, entity.Snapshot{Trip: trip.Clone()}, prev)
}
