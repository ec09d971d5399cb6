package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgefitrack/backend/internal/config"
	"github.com/jgefitrack/backend/internal/models"
)

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)

	record := models.Subscription{
		ID:       7,
		TenantID: 3,
		EndDate:  time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:   models.StatusActive,
	}
	expected := models.ActiveSubscription{Active: true, Record: &record}
	require.NoError(t, cache.Set("active-subscription:3", expected, time.Minute))

	var actual models.ActiveSubscription
	found, err := cache.Get("active-subscription:3", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected.Record.ID, actual.Record.ID)
	assert.Equal(t, expected.Record.Status, actual.Record.Status)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out models.ActiveSubscription
	found, err := cache.Get("no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Set("active-subscription:1", models.ActiveSubscription{}, time.Minute))
	require.NoError(t, cache.Invalidate("active-subscription:1"))

	var out models.ActiveSubscription
	found, err := cache.Get("active-subscription:1", &out)
	require.NoError(t, err)
	assert.False(t, found)
}
