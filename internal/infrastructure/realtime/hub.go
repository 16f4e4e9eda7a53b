package realtime

import (
	"context"
	"sync"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/pkg/logger"
)

// Handler receives change events; it must not block for long
type Handler func(ctx context.Context, event *entity.ChangeEvent)

// Hub is the realtime change channel. Every published event is appended to the
// activity log, then delivered to local subscribers either directly or through
// the redis bridge when several instances share the fleet.
type Hub struct {
	activity repository.ActivityLogRepository
	bridge   *RedisBridge
	logger   logger.Logger

	mu       sync.RWMutex
	handlers map[entity.EntityType][]Handler
	all      []Handler
}

// NewHub creates a new hub; activity and bridge may be nil
func NewHub(activity repository.ActivityLogRepository, bridge *RedisBridge, logger logger.Logger) *Hub {
	return &Hub{
		activity: activity,
		bridge:   bridge,
		logger:   logger,
		handlers: make(map[entity.EntityType][]Handler),
	}
}

// Subscribe registers h for events about one entity type
func (h *Hub) Subscribe(kind entity.EntityType, fn Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[kind] = append(h.handlers[kind], fn)
}

// SubscribeAll registers h for every event
func (h *Hub) SubscribeAll(fn Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.all = append(h.all, fn)
}

// Publish implements repository.EventPublisher
func (h *Hub) Publish(ctx context.Context, event *entity.ChangeEvent) error {
	var appendErr error
	if h.activity != nil {
		if appendErr = h.activity.Append(ctx, event); appendErr != nil {
			h.logger.Error("Failed to append activity", "eventID", event.ID, "error", appendErr)
		}
	}

	if h.bridge != nil {
		err := h.bridge.Publish(ctx, event)
		if err == nil {
			return appendErr
		}
		h.logger.Warn("Redis bridge unavailable, dispatching locally", "eventID", event.ID, "error", err)
	}

	h.Dispatch(ctx, event)
	return appendErr
}

// Dispatch delivers event to the local subscribers in registration order
func (h *Hub) Dispatch(ctx context.Context, event *entity.ChangeEvent) {
	h.mu.RLock()
	targets := make([]Handler, 0, len(h.handlers[event.Entity])+len(h.all))
	targets = append(targets, h.handlers[event.Entity]...)
	targets = append(targets, h.all...)
	h.mu.RUnlock()

	for _, fn := range targets {
		fn(ctx, event)
	}
}

var _ repository.EventPublisher = (*Hub)(nil)
