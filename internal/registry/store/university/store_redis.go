package university

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agaskrobot/fenix-university-registry/internal/registry/models"
)

const cachedRecordKeyPrefix = "unireg:acct:"

// Store is the backend contract the cache decorates. It matches the
// interface the registry service consumes.
type Store interface {
	CreateIfAccountAvailable(ctx context.Context, u *models.University) error
	FindByAccountID(ctx context.Context, accountID string) (*models.University, error)
	ListByName(ctx context.Context, name string) ([]models.University, error)
	ListAll(ctx context.Context) ([]models.Entry, error)
	Count(ctx context.Context) (int, error)
}

// RedisCache is a read-through cache over another Store for the by-account
// lookup, the registry's hot path. Records are immutable once created, so a
// cached entry can never go stale; the TTL only bounds memory on the Redis
// side.
//
// Cache failures degrade to the inner store. A slow or absent Redis must
// never turn a working registry read into an error.
type RedisCache struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache decorates inner with a Redis read-through cache.
func NewRedisCache(inner Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

// CreateIfAccountAvailable writes through to the inner store and primes the
// cache on success.
func (c *RedisCache) CreateIfAccountAvailable(ctx context.Context, u *models.University) error {
	if err := c.inner.CreateIfAccountAvailable(ctx, u); err != nil {
		return err
	}
	c.prime(ctx, u)
	return nil
}

// FindByAccountID serves from Redis when possible, falling back to the inner
// store and priming the cache on a miss.
func (c *RedisCache) FindByAccountID(ctx context.Context, accountID string) (*models.University, error) {
	key := cachedRecordKeyPrefix + accountID
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var u models.University
		if unmarshalErr := json.Unmarshal(payload, &u); unmarshalErr == nil {
			return &u, nil
		}
		// Corrupt entry: drop it and fall through to the inner store.
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "university cache read failed", "error", err, "account_id", accountID)
	}

	u, err := c.inner.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	c.prime(ctx, u)
	return u, nil
}

// ListByName passes through; name buckets are unbounded and cold compared to
// single-record lookups.
func (c *RedisCache) ListByName(ctx context.Context, name string) ([]models.University, error) {
	return c.inner.ListByName(ctx, name)
}

// ListAll passes through.
func (c *RedisCache) ListAll(ctx context.Context) ([]models.Entry, error) {
	return c.inner.ListAll(ctx)
}

// Count passes through.
func (c *RedisCache) Count(ctx context.Context) (int, error) {
	return c.inner.Count(ctx)
}

func (c *RedisCache) prime(ctx context.Context, u *models.University) {
	payload, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cachedRecordKeyPrefix+u.AccountID, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "university cache write failed", "error", err, "account_id", u.AccountID)
	}
}
