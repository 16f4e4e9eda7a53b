package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"txapp-service/internal/domain/entity"
	"txapp-service/pkg/logger"
)

// DefaultChannel is the pub/sub channel shared by all instances
const DefaultChannel = "txapp:changes"

// RedisBridge fans change events out to every instance over redis pub/sub
type RedisBridge struct {
	client  *redis.Client
	channel string
	logger  logger.Logger
}

// NewRedisBridge creates a new bridge on channel
func NewRedisBridge(client *redis.Client, channel string, logger logger.Logger) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBridge{client: client, channel: channel, logger: logger}
}

// Publish sends the event to all subscribed instances, this one included
func (b *RedisBridge) Publish(ctx context.Context, event *entity.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Run subscribes to the channel and dispatches events until ctx is done
func (b *RedisBridge) Run(ctx context.Context, dispatch Handler) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.logger.Info("Subscribed to change channel", "channel", b.channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := decodeEvent(msg.Payload)
			if err != nil {
				b.logger.Warn("Dropping malformed change event", "error", err)
				continue
			}
			dispatch(ctx, event)
		}
	}
}

func decodeEvent(payload string) (*entity.ChangeEvent, error) {
	var event entity.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, err
	}
	if event.Entity == "" || event.Type == "" {
		return nil, fmt.Errorf("event %q has no entity or type", event.ID)
	}
	return &event, nil
}
