package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocations_FirstRevokeWins(t *testing.T) {
	t.Parallel()

	m := NewMemoryRevocations()
	ctx := context.Background()
	until := time.Now().Add(time.Hour)

	first, err := m.Revoke(ctx, "jti-1", until)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = m.Revoke(ctx, "jti-1", until)
	require.NoError(t, err)
	assert.False(t, first)

	first, err = m.Revoke(ctx, "jti-2", until)
	require.NoError(t, err)
	assert.True(t, first)
}

func TestMemoryRevocations_PrunesExpired(t *testing.T) {
	t.Parallel()

	m := NewMemoryRevocations()
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := m.Revoke(ctx, "old", now.Add(time.Minute))
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = m.Revoke(ctx, "new", now.Add(time.Minute))
	require.NoError(t, err)

	assert.NotContains(t, m.revoked, "old")
	assert.Contains(t, m.revoked, "new")
}

func TestRedisRevocations(t *testing.T) {
	addr := os.Getenv("AUTH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AUTH_TEST_REDIS_ADDR is required for tests")
	}

	r := NewRedisRevocations(addr)
	t.Cleanup(func() { _ = r.Close() })
	ctx := context.Background()
	require.NoError(t, r.Ping(ctx))

	jti := uuid.NewString()
	first, err := r.Revoke(ctx, jti, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, first)

	first, err = r.Revoke(ctx, jti, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, first)

	ttl, err := r.Client.TTL(ctx, revokedPrefix+jti).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}
