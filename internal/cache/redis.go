package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"userposts/internal/config"
)

const defaultTTL = time.Minute

// setIfGeneration writes KEYS[1] only when KEYS[2] (missing counts as 0)
// still equals ARGV[1].
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a Redis-backed cache, or Noop when cfg.Addr is empty. The
// server is pinged once so a wrong address fails at startup.
func New(ctx context.Context, cfg config.Redis) (Cache, error) {
	if cfg.Addr == "" {
		return Noop{}, nil
	}

	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisClient{client: c, ttl: ttl}, nil
}

func (r *RedisClient) Close() error { return r.client.Close() }

func (r *RedisClient) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, sonic.Unmarshal(val, dest)
}

func (r *RedisClient) Generation(ctx context.Context, key string) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *RedisClient) SetJSONIf(ctx context.Context, key string, gen int64, value any) (bool, error) {
	b, err := sonic.Marshal(value)
	if err != nil {
		return false, err
	}

	stored, err := setIfGeneration.Run(ctx, r.client,
		[]string{key, generationKey(key)},
		gen, b, r.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

func (r *RedisClient) Invalidate(ctx context.Context, key string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(key))
		pipe.Del(ctx, key)
		return nil
	})
	return err
}
