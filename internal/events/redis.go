package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher публикует события в канал Redis, который слушает сервис уведомлений.
type RedisPublisher struct {
	rdb     redis.UniversalClient
	channel string
}

func NewRedisPublisher(rdb redis.UniversalClient, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: не удалось сериализовать событие: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("events: не удалось опубликовать %s: %w", e.Type, err)
	}
	return nil
}
