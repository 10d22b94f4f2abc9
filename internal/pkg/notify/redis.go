package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/dtr"
	"github.com/redis/go-redis/v9"
)

// DTRChangedChannel is the pub/sub channel cache owners subscribe to.
const DTRChangedChannel = "dtr:changed"

// RedisNotifier publishes DTR change events on a Redis channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client, channel: DTRChangedChannel}
}

// DTRChanged implements dtr.Notifier.
func (n *RedisNotifier) DTRChanged(ctx context.Context, event dtr.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode DTR change event: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, string(payload)).Err(); err != nil {
		return fmt.Errorf("failed to publish DTR change event: %w", err)
	}

	return nil
}

// NoopNotifier is used when no Redis is configured.
type NoopNotifier struct{}

func (NoopNotifier) DTRChanged(ctx context.Context, event dtr.ChangeEvent) error {
	return nil
}
