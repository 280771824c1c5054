package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/pkg/logger"
)

// Client caches feed snapshot hashes so collectors can skip unchanged
// upstream documents between cycles.
type Client struct {
	client *redis.Client
}

const snapshotTTL = 24 * time.Hour

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) GetSnapshot(ctx context.Context, source string) (string, error) {
	hash, err := c.client.Get(ctx, fmt.Sprintf("snapshot:%s", source)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get snapshot hash: %w", err)
	}

	logger.Debug("Snapshot hash found", zap.String("source", source))
	return hash, nil
}

func (c *Client) SetSnapshot(ctx context.Context, source, hash string) error {
	err := c.client.Set(ctx, fmt.Sprintf("snapshot:%s", source), hash, snapshotTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set snapshot hash: %w", err)
	}

	logger.Debug("Snapshot hash stored", zap.String("source", source))
	return nil
}
