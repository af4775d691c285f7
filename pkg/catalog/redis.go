package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/redis/go-redis/v9"
)

// DefaultSnapshotKey is the redis key holding the shared catalog snapshot.
const DefaultSnapshotKey = "flowgen:catalog:snapshot"

// RedisSource shares a catalog snapshot between API replicas. Reads hit redis
// first and fall through to the upstream source on a miss, writing the result
// back with the given expiry. Redis failures are logged and bypassed.
type RedisSource struct {
	client   redis.Cmdable
	upstream Source
	key      string
	expiry   time.Duration
	logger   *slog.Logger
}

// NewRedisSource wraps upstream with a redis snapshot.
func NewRedisSource(logger *slog.Logger, client redis.Cmdable, upstream Source, expiry time.Duration) *RedisSource {
	return &RedisSource{
		client:   client,
		upstream: upstream,
		key:      DefaultSnapshotKey,
		expiry:   expiry,
		logger:   logger,
	}
}

// NewRedisClient parses url and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// ListNodeTypes implements Source.
func (s *RedisSource) ListNodeTypes(ctx context.Context) ([]*models.NodeTypeDefinition, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()

	switch {
	case err == nil:
		var defs []*models.NodeTypeDefinition
		if err := json.Unmarshal(data, &defs); err == nil && len(defs) > 0 {
			return defs, nil
		}

		s.logger.WarnContext(ctx, "Discarding unreadable catalog snapshot", "key", s.key)
	case errors.Is(err, redis.Nil):
	default:
		s.logger.WarnContext(ctx, "Catalog snapshot unavailable", "error", err)
	}

	defs, err := s.upstream.ListNodeTypes(ctx)
	if err != nil {
		return nil, err
	}

	s.store(ctx, defs)

	return defs, nil
}

// Purge removes the shared snapshot so every replica reloads from upstream.
func (s *RedisSource) Purge(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *RedisSource) store(ctx context.Context, defs []*models.NodeTypeDefinition) {
	if len(defs) == 0 {
		return
	}

	data, err := json.Marshal(defs)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to encode catalog snapshot", "error", err)

		return
	}

	if err := s.client.Set(ctx, s.key, data, s.expiry).Err(); err != nil {
		s.logger.WarnContext(ctx, "Failed to store catalog snapshot", "error", err)
	}
}
