package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "auth:revoked:"

// RedisRevocations keeps consumed refresh-token ids until the token would have
// expired anyway.
type RedisRevocations struct {
	Client *redis.Client
}

func NewRedisRevocations(addr string) *RedisRevocations {
	return &RedisRevocations{Client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Revoke marks jti as used. first is false when it was already revoked.
func (r *RedisRevocations) Revoke(ctx context.Context, jti string, until time.Time) (bool, error) {
	ttl := time.Until(until)
	if ttl < time.Second {
		ttl = time.Second
	}
	first, err := r.Client.SetNX(ctx, revokedPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis revoke: %w", err)
	}
	return first, nil
}

func (r *RedisRevocations) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisRevocations) Close() error {
	return r.Client.Close()
}

type MemoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{revoked: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevocations) Revoke(_ context.Context, jti string, until time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, k)
		}
	}
	if _, ok := m.revoked[jti]; ok {
		return false, nil
	}
	m.revoked[jti] = until
	return true, nil
}
