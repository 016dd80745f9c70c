// Package notify delivers committed events to connected clients over
// Redis pub/sub. Each room maps to a Redis channel; frontends subscribe
// to the rooms their role grants.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"woodline/internal/domain/events"
)

// RedisPublisher publishes events to Redis channels named after rooms.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher on the given client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish sends the event to its room's channel.
func (p *RedisPublisher) Publish(ctx context.Context, ev events.Event) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.ID, err)
	}
	if err := p.client.Publish(ctx, string(ev.Room), msg).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", ev.Room, err)
	}
	return nil
}
