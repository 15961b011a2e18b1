package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the set every pending cleanup key lives in
const DefaultKey = "photoshare:cleanup"

// Journal is a Redis-backed cleanup journal. Recorded keys survive process
// restarts, so blob deletes that failed are retried even after a crash.
type Journal struct {
	client *redis.Client
	key    string
}

// Config options for the Redis journal
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string // Set name; defaults to DefaultKey
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, config Config) (*Journal, error) {
	if config.Key == "" {
		config.Key = DefaultKey
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Journal{client: client, key: config.Key}, nil
}

// Record remembers an object key that still needs deleting
func (j *Journal) Record(ctx context.Context, objectKey string) error {
	if err := j.client.SAdd(ctx, j.key, objectKey).Err(); err != nil {
		return fmt.Errorf("failed to record cleanup key: %w", err)
	}
	return nil
}

// Pending returns the recorded keys
func (j *Journal) Pending(ctx context.Context) ([]string, error) {
	keys, err := j.client.SMembers(ctx, j.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cleanup keys: %w", err)
	}
	return keys, nil
}

// Remove forgets a key once its object is gone
func (j *Journal) Remove(ctx context.Context, objectKey string) error {
	if err := j.client.SRem(ctx, j.key, objectKey).Err(); err != nil {
		return fmt.Errorf("failed to remove cleanup key: %w", err)
	}
	return nil
}

// Close releases the Redis connection
func (j *Journal) Close() error {
	return j.client.Close()
}
