package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResultCache stores serialized comparisons keyed by their inputs
type ResultCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// MemoryCache is an in-process ResultCache used when no Redis address is configured.
// Entries expire after ttl like their Redis counterparts; a ttl <= 0 keeps them forever.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	ttl  time.Duration
	now  func() time.Time
}

type memoryEntry struct {
	value   string
	expires time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.data[key]
	if !ok {
		return "", false
	}
	if m.expired(entry) {
		delete(m.data, key)
		return "", false
	}
	return entry.value, true
}

// Set stores value and sweeps entries that have already expired
func (m *MemoryCache) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, entry := range m.data {
		if m.expired(entry) {
			delete(m.data, k)
		}
	}
	entry := memoryEntry{value: value}
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}
	m.data[key] = entry
	return nil
}

// Len returns the number of stored entries, expired or not
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *MemoryCache) expired(entry memoryEntry) bool {
	return !entry.expires.IsZero() && !m.now().Before(entry.expires)
}

// RedisCache is a ResultCache shared between server instances
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: rdb,
		ttl:    ttl,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			loggerFrom(ctx).Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value string) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Close releases the underlying connection pool
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// newResultCache picks Redis when an address is configured, memory otherwise
func newResultCache(config ServerConfig) ResultCache {
	if config.RedisAddr != "" {
		return NewRedisCache(config.RedisAddr, config.CacheTTL)
	}
	return NewMemoryCache(config.CacheTTL)
}

// cacheKey hashes every input that affects a comparison
func cacheKey(config *Config) (string, error) {
	payload, err := json.Marshal(struct {
		Amortized   AmortizedConfig   `json:"a"`
		IncomeShare IncomeShareConfig `json:"i"`
		Labels      LabelConfig       `json:"l"`
	}{config.Amortized, config.IncomeShare, config.Labels})
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	return "loancmp:comparison:" + strconv.FormatUint(xxhash.Sum64(payload), 16), nil
}

// cachedComparison returns a cached comparison for config or computes and stores one.
// Cache failures are logged and never fail the calculation.
func cachedComparison(ctx context.Context, cache ResultCache, config *Config) (Comparison, error) {
	if cache == nil {
		return RunComparison(ctx, config)
	}

	key, err := cacheKey(config)
	if err != nil {
		return RunComparison(ctx, config)
	}

	if val, ok := cache.Get(ctx, key); ok {
		var c Comparison
		if err := json.Unmarshal([]byte(val), &c); err == nil {
			cacheLookupsTotal.WithLabelValues("hit").Inc()
			return c, nil
		}
		loggerFrom(ctx).Warn("discarding unreadable cache entry", zap.String("key", key))
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()

	c, err := RunComparison(ctx, config)
	if err != nil {
		return Comparison{}, err
	}

	if data, err := json.Marshal(c); err == nil {
		if err := cache.Set(ctx, key, string(data)); err != nil {
			loggerFrom(ctx).Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return c, nil
}
