package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/markethub/backend/internal/domain/dropship"
	"github.com/markethub/backend/internal/infrastructure/config"
)

const forwardGuardPrefix = "fulfillment:forward:"

// RedisForwardGuard implements ForwardGuard using Redis
// This is suitable for distributed deployments where multiple instances
// may pick up the same fulfillment trigger
type RedisForwardGuard struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisForwardGuard creates a new Redis-based forward guard
func NewRedisForwardGuard(cfg config.RedisConfig) (*RedisForwardGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisForwardGuard{
		client:    client,
		keyPrefix: forwardGuardPrefix,
	}, nil
}

// NewRedisForwardGuardWithClient creates a guard with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisForwardGuardWithClient(client *redis.Client, keyPrefix string) *RedisForwardGuard {
	if keyPrefix == "" {
		keyPrefix = forwardGuardPrefix
	}
	return &RedisForwardGuard{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire claims the forward slot for an order item
// Uses SETNX (SET if Not eXists) so only one caller wins the slot
func (g *RedisForwardGuard) Acquire(ctx context.Context, orderID, orderItemID uuid.UUID, ttl time.Duration) (bool, error) {
	key := g.key(orderID, orderItemID)

	won, err := g.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire forward slot: %w", err)
	}

	return won, nil
}

// Release frees the slot so the next attempt can claim it
func (g *RedisForwardGuard) Release(ctx context.Context, orderID, orderItemID uuid.UUID) error {
	if err := g.client.Del(ctx, g.key(orderID, orderItemID)).Err(); err != nil {
		return fmt.Errorf("failed to release forward slot: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (g *RedisForwardGuard) Close() error {
	return g.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (g *RedisForwardGuard) GetClient() *redis.Client {
	return g.client
}

func (g *RedisForwardGuard) key(orderID, orderItemID uuid.UUID) string {
	return g.keyPrefix + orderID.String() + ":" + orderItemID.String()
}

// Ensure RedisForwardGuard implements ForwardGuard
var _ dropship.ForwardGuard = (*RedisForwardGuard)(nil)
