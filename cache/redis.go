package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inventory-svc/circuitbreaker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	KeyCategories = "inventory:categories"
	KeyProducts   = "inventory:products"
)

func InitRedis(addr, password string, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established", zap.String("addr", addr))
	return rdb, nil
}

// ListCache stores serialized list responses. A failing Redis never fails
// the caller: errors are logged and the breaker stops further attempts for a
// while.
type ListCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewListCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *ListCache {
	return &ListCache{
		rdb: rdb,
		ttl: ttl,
		breaker: circuitbreaker.NewCircuitBreaker(5, 30*time.Second,
			circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
				logger.Warn("Cache circuit breaker state changed",
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			}),
		),
		logger: logger,
	}
}

func versionKey(key string) string {
	return key + ":version"
}

var errStaleFill = errors.New("cache entry invalidated since read")

// Get decodes the cached value for key into dst and reports whether it was
// a hit. The returned version must be passed to Set when refilling the key;
// it is -1 when Redis could not be read.
func (c *ListCache) Get(ctx context.Context, key string, dst any) (int64, bool) {
	var vals []any
	err := c.breaker.Execute(ctx, func() error {
		var err error
		vals, err = c.rdb.MGet(ctx, key, versionKey(key)).Result()
		return err
	})
	if err != nil {
		c.logFailure("get", key, err)
		return -1, false
	}

	var version int64
	if raw, ok := vals[1].(string); ok {
		version, _ = strconv.ParseInt(raw, 10, 64)
	}

	data, ok := vals[0].(string)
	if !ok {
		return version, false
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return version, false
	}
	return version, true
}

// Set stores value under key only if no Invalidate happened since the Get
// that returned version.
func (c *ListCache) Set(ctx context.Context, key string, value any, version int64) {
	if version < 0 {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	err = c.breaker.Execute(ctx, func() error {
		err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, versionKey(key)).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if current != version {
				return errStaleFill
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, c.ttl)
				return nil
			})
			return err
		}, versionKey(key))
		if errors.Is(err, errStaleFill) || errors.Is(err, redis.TxFailedErr) {
			c.logger.Debug("Skipping stale cache fill", zap.String("key", key))
			return nil
		}
		return err
	})
	if err != nil {
		c.logFailure("set", key, err)
	}
}

// Invalidate drops the keys and bumps their versions so that fills started
// before this call are discarded.
func (c *ListCache) Invalidate(ctx context.Context, keys ...string) {
	err := c.breaker.Execute(ctx, func() error {
		_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, keys...)
			for _, key := range keys {
				pipe.Incr(ctx, versionKey(key))
			}
			return nil
		})
		return err
	})
	if err != nil {
		c.logFailure("invalidate", fmt.Sprint(keys), err)
	}
}

func (c *ListCache) logFailure(op, key string, err error) {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		c.logger.Debug("Cache skipped, circuit open", zap.String("op", op), zap.String("key", key))
		return
	}
	c.logger.Warn("Cache operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
}
