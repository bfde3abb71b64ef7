package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/steve-ongera/amazon/internal/domain"
)

// Redis persists the credential pair in Redis, for deployments where this
// client runs server-side (a BFF holding one pair per end-user session).
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed store. The prefix namespaces the two token
// keys, typically "session:<session-id>".
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) accessKey() string  { return r.prefix + ":" + KeyAccessToken }
func (r *Redis) refreshKey() string { return r.prefix + ":" + KeyRefreshToken }

func (r *Redis) Load(ctx context.Context) (domain.TokenPair, error) {
	var pair domain.TokenPair

	access, err := r.client.Get(ctx, r.accessKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.TokenPair{}, fmt.Errorf("load access token: %w", err)
	}
	pair.Access = access

	refresh, err := r.client.Get(ctx, r.refreshKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.TokenPair{}, fmt.Errorf("load refresh token: %w", err)
	}
	pair.Refresh = refresh

	return pair, nil
}

func (r *Redis) Save(ctx context.Context, pair domain.TokenPair) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.accessKey(), pair.Access, 0)
	pipe.Set(ctx, r.refreshKey(), pair.Refresh, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save credential pair: %w", err)
	}
	return nil
}

func (r *Redis) SaveAccess(ctx context.Context, access string) error {
	if err := r.client.Set(ctx, r.accessKey(), access, 0).Err(); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.accessKey(), r.refreshKey()).Err(); err != nil {
		return fmt.Errorf("clear credential pair: %w", err)
	}
	return nil
}
