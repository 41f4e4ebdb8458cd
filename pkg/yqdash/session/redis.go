package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

// RedisConfig configures the shared memo store used by the server.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" default:"localhost:6379"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size" default:"10" validate:"gte=1"`
	Prefix   string        `mapstructure:"prefix" default:"yqdash"`
	TTL      time.Duration `mapstructure:"ttl" default:"10m"`
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisStore keeps one session's results under prefix:memo:<session>:.
// Hits are decoded from JSON, so Data comes back as generic maps and slices
// rather than the original values.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix, sessionID string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: fmt.Sprintf("%s:memo:%s:", prefix, sessionID),
		ttl:    ttl,
	}
}

// RedisStoreFactory returns a StoreFactory sharing one client.
func RedisStoreFactory(client *redis.Client, cfg RedisConfig) StoreFactory {
	return func(sessionID string) Store {
		return NewRedisStore(client, cfg.Prefix, sessionID, cfg.TTL)
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (types.QueryResult, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return types.QueryResult{}, false, nil
		}
		return types.QueryResult{}, false, err
	}
	var res types.QueryResult
	if err := json.Unmarshal(data, &res); err != nil {
		return types.QueryResult{}, false, fmt.Errorf("decode memo %s: %w", key, err)
	}
	return res, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, res types.QueryResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, data, s.ttl).Err()
}

// Clear unlinks every key under the session prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	keys, err := s.client.Keys(ctx, s.prefix+"*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Unlink(ctx, keys...).Err()
}
