// Package store provides the small key-value persistence used for
// notification watermarks. The delta engine receives a KV instance
// explicitly instead of touching shared global state.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// KV is a minimal get/set contract with no transactional guarantees.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// RedisKV stores values in Redis without expiry.
type RedisKV struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisKV creates a RedisKV namespaced under prefix.
func NewRedisKV(rdb *redis.Client, prefix string) *RedisKV {
	return &RedisKV{rdb: rdb, prefix: prefix}
}

func (s *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisKV) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, s.prefix+key, value, 0).Err()
}

// MemKV is an in-memory KV for tests and single-binary development.
type MemKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string]string)}
}

func (s *MemKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok, nil
}

func (s *MemKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}
