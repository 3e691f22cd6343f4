package kv_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartfinance/internal/cache"
	"smartfinance/internal/kv"
	"smartfinance/internal/kv/kvtest"
)

type countingStore struct {
	*kv.Memory
	gets   int
	failOn string
}

func (c *countingStore) Get(ctx context.Context, key string) (string, bool, error) {
	c.gets++
	return c.Memory.Get(ctx, key)
}

func (c *countingStore) Set(ctx context.Context, key, value string) error {
	if key == c.failOn {
		return errors.New("boom")
	}
	return c.Memory.Set(ctx, key, value)
}

func TestCachedStore(t *testing.T) {
	kvtest.Run(t, kv.NewCached(kv.NewMemory(), cache.NewLRUCache[string](16, time.Minute)))
}

func TestCachedServesRepeatReads(t *testing.T) {
	ctx := context.Background()
	back := &countingStore{Memory: kv.NewMemory()}
	s := kv.NewCached(back, cache.NewLRUCache[string](16, time.Minute))

	require.NoError(t, back.Memory.Set(ctx, "k", "v"))
	for i := 0; i < 3; i++ {
		v, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "v", v)
	}
	assert.Equal(t, 1, back.gets)

	require.NoError(t, s.Set(ctx, "k", "w"))
	v, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "w", v)
	assert.Equal(t, 1, back.gets)
}

func TestCachedDropsEntryOnFailedWrite(t *testing.T) {
	ctx := context.Background()
	back := &countingStore{Memory: kv.NewMemory(), failOn: "k"}
	c := cache.NewLRUCache[string](16, time.Minute)
	s := kv.NewCached(back, c)

	c.Set("k", "stale")
	assert.Error(t, s.Set(ctx, "k", "new"))
	_, ok := c.Get("k")
	assert.False(t, ok)
}
