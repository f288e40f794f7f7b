// internal/store/redis.go
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisStore keeps each document under <prefix><name>
type RedisStore struct {
	logger *logrus.Logger
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(logger *logrus.Logger, addr, prefix string) *RedisStore {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{logger: logger, client: client, prefix: prefix}
}

// Ping checks connectivity to Redis
func (rs *RedisStore) Ping(ctx context.Context) error {
	if err := rs.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Close releases the underlying client
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

// Load reads the named document
func (rs *RedisStore) Load(ctx context.Context, name string) ([]byte, error) {
	key := rs.prefix + name
	rs.logger.WithField("key", key).Debug("Loading document")

	data, err := rs.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document '%s': %w", key, err)
	}
	return data, nil
}

// Save writes the named document without expiry
func (rs *RedisStore) Save(ctx context.Context, name string, data []byte) error {
	key := rs.prefix + name
	if err := rs.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set document '%s': %w", key, err)
	}

	rs.logger.WithField("key", key).Info("Document saved")
	return nil
}

// List returns the names of all stored documents, sorted
func (rs *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := rs.client.Scan(ctx, 0, rs.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), rs.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan documents: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
