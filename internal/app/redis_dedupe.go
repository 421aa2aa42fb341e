package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisEventDeduper records processed event ids in Redis so replayed
// deliveries of the same completion event are checked only once across all
// consumer instances.
type RedisEventDeduper struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisEventDeduper(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisEventDeduper {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "transfer_engine:event_seen"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisEventDeduper{
		client: client,
		prefix: trimmedPrefix,
		ttl:    ttl,
	}
}

// MarkProcessed reports whether eventID is new. The SET NX write and the
// freshness check are a single atomic operation in Redis.
func (d *RedisEventDeduper) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	if d == nil || d.client == nil {
		return true, nil
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return false, fmt.Errorf("event id cannot be empty")
	}

	key := fmt.Sprintf("%s:%s", d.prefix, eventID)
	first, err := d.client.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return false, err
	}
	return first, nil
}
