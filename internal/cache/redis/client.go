// Package redis is the hot cache in front of the canonical sqlite
// store. It only ever holds fully computed subject records; misses and
// redis outages fall through to sqlite.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/procon-engine/backend/internal/storage/models"
	"github.com/procon-engine/backend/pkg/logger"
)

type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// GetRecord returns the cached record for a subject key. The second
// return value reports whether there was a hit.
func (c *Client) GetRecord(ctx context.Context, key string) (*models.SubjectRecord, bool, error) {
	data, err := c.client.Get(ctx, recordKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached record: %w", err)
	}

	var record models.SubjectRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached record: %w", err)
	}
	record.Key = key

	logger.Debug("Record cache hit", zap.String("subject_key", key))
	return &record, true, nil
}

// SetRecord caches a record under its subject key. A zero TTL means the
// entry does not expire.
func (c *Client) SetRecord(ctx context.Context, record *models.SubjectRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := c.client.Set(ctx, recordKey(record.Key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache record: %w", err)
	}

	logger.Debug("Record cached", zap.String("subject_key", record.Key), zap.Duration("ttl", c.ttl))
	return nil
}

func recordKey(key string) string {
	return "record:" + key
}
