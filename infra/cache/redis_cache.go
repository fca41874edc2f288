package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"log/slog"

	"github.com/amirasaad/pos/pkg/domain/offer"
	"github.com/redis/go-redis/v9"
)

// RedisOfferCache implements cache.OfferCache using Redis.
type RedisOfferCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisOfferCache creates a new RedisOfferCache.
func NewRedisOfferCache(
	addr, password string,
	db int,
	prefix string,
	logger *slog.Logger,
) *RedisOfferCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisOfferCache{client: client, prefix: prefix, logger: logger}
}

// NewRedisOfferCacheWithOptions creates a new RedisOfferCache from
// redis.Options.
func NewRedisOfferCacheWithOptions(
	opt *redis.Options,
	prefix string,
	logger *slog.Logger,
) *RedisOfferCache {
	client := redis.NewClient(opt)
	return &RedisOfferCache{client: client, prefix: prefix, logger: logger}
}

func (r *RedisOfferCache) key(key string) string {
	return r.prefix + key
}

// Close releases the underlying redis client.
func (r *RedisOfferCache) Close() error {
	return r.client.Close()
}

// Get retrieves a cached candidate set. redis.Nil is a cache miss.
func (r *RedisOfferCache) Get(ctx context.Context, key string) ([]*offer.Offer, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "key", key)
		return nil, nil // cache miss
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "key", key, "error", err)
		return nil, err
	}
	var offers []*offer.Offer
	if err := json.Unmarshal([]byte(val), &offers); err != nil {
		r.logger.Error("Redis cache unmarshal error", "key", key, "error", err)
		return nil, err
	}
	r.logger.Debug("Redis cache hit", "key", key, "offers", len(offers))
	return offers, nil
}

// Set stores a candidate set with a TTL.
func (r *RedisOfferCache) Set(
	ctx context.Context,
	key string,
	offers []*offer.Offer,
	ttl time.Duration,
) error {
	data, err := json.Marshal(offers)
	if err != nil {
		r.logger.Error("Redis cache marshal error", "key", key, "error", err)
		return err
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "key", key, "error", err)
		return err
	}
	return nil
}

// Delete removes a candidate set from cache.
func (r *RedisOfferCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
