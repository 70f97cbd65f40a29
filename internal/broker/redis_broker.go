package broker

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// TaskEventsChannel is the Redis pub/sub channel task events are published on.
const TaskEventsChannel = "tasks:events"

// RedisEventBroker implements EventPublisher using Redis pub/sub.
type RedisEventBroker struct {
	client *redis.Client
}

func NewRedisEventBroker(client *redis.Client) *RedisEventBroker {
	return &RedisEventBroker{client: client}
}

func (r *RedisEventBroker) Publish(ctx context.Context, event TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, TaskEventsChannel, data).Err()
}

// Close is a no-op: the client is shared with the rate limiter and closed by main.
func (r *RedisEventBroker) Close() error {
	return nil
}
