package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DeliveryGuard remembers which settlement notifications were already handled,
// so redelivered webhooks are acknowledged without being processed twice.
type DeliveryGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDeliveryGuard(cfg RedisConfig, ttl time.Duration) *DeliveryGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DeliveryGuard{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

// MarkFirstDelivery returns true the first time key is seen within the TTL.
func (g *DeliveryGuard) MarkFirstDelivery(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, deliveryKey(key), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
}

// ReleaseDelivery forgets key so the next delivery is handled as the first one.
func (g *DeliveryGuard) ReleaseDelivery(ctx context.Context, key string) error {
	return g.client.Del(ctx, deliveryKey(key)).Err()
}

func (g *DeliveryGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

func (g *DeliveryGuard) Close() error {
	return g.client.Close()
}

func deliveryKey(key string) string {
	return fmt.Sprintf("webhook:delivery:%s", strings.ToLower(key))
}
