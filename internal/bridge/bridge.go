package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chime/internal/config"
	"chime/pkg/ntfy"
)

const dedupKeyPrefix = "chime:dedup:"

// Bridge republishes received ntfy messages to a Redis channel so other
// processes can consume them without holding their own subscription.
type Bridge struct {
	client      *redis.Client
	channel     string
	dedupWindow time.Duration
}

// New creates a Bridge from the bridge configuration section. It does not
// dial Redis; call Ping to verify connectivity.
func New(cfg *config.Bridge) *Bridge {
	return &Bridge{
		client: redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		}),
		channel:     cfg.Channel,
		dedupWindow: time.Duration(cfg.DedupWindowSeconds) * time.Second,
	}
}

// Ping verifies the Redis connection.
func (b *Bridge) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Forward republishes one message to the configured channel. The returned
// bool reports whether the message was published; false with a nil error
// means the message was suppressed by the deduplication window.
func (b *Bridge) Forward(ctx context.Context, msg ntfy.Message) (bool, error) {
	if b.dedupWindow > 0 && msg.ID != "" {
		fresh, err := b.client.SetNX(ctx, dedupKeyPrefix+msg.ID, 1, b.dedupWindow).Result()
		if err != nil {
			return false, fmt.Errorf("dedup check: %w", err)
		}
		if !fresh {
			return false, nil
		}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return false, fmt.Errorf("encode message: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return false, fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return true, nil
}

// Close releases the Redis connection pool.
func (b *Bridge) Close() error {
	return b.client.Close()
}
