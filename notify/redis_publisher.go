package notify

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/engine"
)

// DefaultChannel is the Redis channel notifications are published on.
const DefaultChannel = "openshelf:notifications"

// RedisPublisher is an engine.Notifier that publishes to a Redis channel.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisPublisher creates a publisher. An empty channel means DefaultChannel.
func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}

	return &RedisPublisher{client: client, channel: channel}
}

// Notify publishes the notification. Redis does not buffer for absent subscribers, put an Outbox
// in front when delivery must not be lost.
func (p *RedisPublisher) Notify(ctx context.Context, notification engine.Notification) error {
	payload, err := encode(notification)
	if err != nil {
		return err
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return errors.Join(ErrPublishingNotificationFailed, err)
	}

	return nil
}

// Channel returns the channel notifications are published on.
func (p *RedisPublisher) Channel() string {
	return p.channel
}
