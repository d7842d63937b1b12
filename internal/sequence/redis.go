package sequence

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"savings-accounts/internal/errors"
)

// DefaultKey is the Redis key backing the shared transaction counter.
const DefaultKey = "transaction:seq"

// RedisGenerator implements Generator with a Redis INCR counter, which is the
// linearizable increment-and-get primitive the identifiers need.
type RedisGenerator struct {
	client redis.UniversalClient
	key    string
	logger *slog.Logger
}

func NewRedisGenerator(client redis.UniversalClient, key string, logger *slog.Logger) *RedisGenerator {
	if key == "" {
		key = DefaultKey
	}

	return &RedisGenerator{
		client: client,
		key:    key,
		logger: logger,
	}
}

func (g *RedisGenerator) Next(ctx context.Context) (int64, error) {
	id, err := g.client.Incr(ctx, g.key).Result()
	if err != nil {
		g.logger.Error("failed to generate transaction id", "key", g.key, "error", err)
		return 0, errors.NewAppError(errors.InfrastructureUnavailable, "sequence generator unreachable").WithDetails(err.Error())
	}

	g.logger.Debug("generated transaction id", "transaction_id", id)

	return id, nil
}
