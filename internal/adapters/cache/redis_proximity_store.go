package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/obs"

	redis "github.com/redis/go-redis/v9"
)

// RedisProximityStore keeps each proximity cache in one Redis hash
// (origin -> JSON neighbors) that expires ttl after its last write.
type RedisProximityStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisProximityStore(rdb *redis.Client, ttl time.Duration) *RedisProximityStore {
	return &RedisProximityStore{rdb: rdb, ttl: ttl}
}

// NewRedisProximityStoreFromURL connects using a redis:// URL.
func NewRedisProximityStoreFromURL(url string, ttl time.Duration) (*RedisProximityStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis proximity store: parse url: %w", err)
	}
	return NewRedisProximityStore(redis.NewClient(opt), ttl), nil
}

func (s *RedisProximityStore) hashName(key string) string { return "proximity:" + key }

func (s *RedisProximityStore) LoadProximity(ctx context.Context, key string) (_ map[string][]domain.Nearby, err error) {
	defer obs.Time(ctx, "proximity.redis.Load")(&err)

	if strings.TrimSpace(key) == "" {
		return nil, errors.New("get proximity cache: key must not be empty")
	}

	raw, err := s.rdb.HGetAll(ctx, s.hashName(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("get proximity cache: hgetall: %w", err)
	}

	out := make(map[string][]domain.Nearby, len(raw))
	for origin, v := range raw {
		n, err := decodeNearby([]byte(v))
		if err != nil {
			return nil, fmt.Errorf("get proximity cache: decode origin %q: %w", origin, err)
		}
		out[origin] = n
	}
	return out, nil
}

func (s *RedisProximityStore) SaveProximity(
	ctx context.Context,
	key string,
	entries map[string][]domain.Nearby,
) (err error) {
	defer obs.Time(ctx, "proximity.redis.Save")(&err)

	if strings.TrimSpace(key) == "" {
		return errors.New("insert proximity cache: key must not be empty")
	}
	if len(entries) == 0 {
		return nil
	}

	values := make(map[string]any, len(entries))
	for origin, n := range entries {
		raw, err := encodeNearby(n)
		if err != nil {
			return fmt.Errorf("insert proximity cache origin=%q: encode: %w", origin, err)
		}
		values[origin] = string(raw)
	}

	name := s.hashName(key)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, name, values)
	if s.ttl > 0 {
		pipe.Expire(ctx, name, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert proximity cache: exec: %w", err)
	}
	return nil
}

func (s *RedisProximityStore) Close() error { return s.rdb.Close() }
