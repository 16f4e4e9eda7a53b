package usecase

import (
	"context"
	"fmt"
	"strings"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/pkg/logger"
)

const defaultInboxBatch = 50

// NotificationInbox hands vehicle-change notifications to named consumers
type NotificationInbox struct {
	notifications repository.NotificationRepository
	logger        logger.Logger
}

// NewNotificationInbox creates a new notification inbox
func NewNotificationInbox(notifications repository.NotificationRepository, logger logger.Logger) *NotificationInbox {
	return &NotificationInbox{
		notifications: notifications,
		logger:        logger,
	}
}

// Consume returns the notifications after the consumer's offset and commits
// the offset past the last one returned
func (i *NotificationInbox) Consume(ctx context.Context, actor entity.Identity, consumer string, limit int) ([]*entity.VehicleChangeNotification, error) {
	if !actor.Can(entity.ActionViewOversight) {
		return nil, entity.ErrForbidden
	}
	consumer = strings.TrimSpace(consumer)
	if consumer == "" {
		return nil, fmt.Errorf("%w: consumer is required", entity.ErrInvalidInput)
	}
	if limit <= 0 || limit > defaultInboxBatch {
		limit = defaultInboxBatch
	}

	offset, err := i.notifications.GetOffset(ctx, consumer)
	if err != nil {
		return nil, entity.StepError("consume_notifications", "get_offset", err)
	}

	items, err := i.notifications.ListAfter(ctx, offset, limit)
	if err != nil {
		return nil, entity.StepError("consume_notifications", "list", err)
	}
	if len(items) == 0 {
		return items, nil
	}

	last := items[len(items)-1].Seq
	if err := i.notifications.CommitOffset(ctx, consumer, last); err != nil {
		return nil, entity.StepError("consume_notifications", "commit_offset", err)
	}

	i.logger.Debug("Notifications consumed", "consumer", consumer, "count", len(items), "offset", last)
	return items, nil
}
