// Package kvtest holds the behaviour every kv.Store backend must share.
package kvtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartfinance/internal/kv"
)

// Run exercises s. The store must start empty.
func Run(t *testing.T, s kv.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, ok, err := s.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set get overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "theme", "light"))
		require.NoError(t, s.Set(ctx, "theme", "dark"))
		v, ok, err := s.Get(ctx, "theme")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "dark", v)
	})

	t.Run("empty value exists", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "blank", ""))
		_, ok, err := s.Get(ctx, "blank")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "gone", "x"))
		require.NoError(t, s.Delete(ctx, "gone"))
		_, ok, err := s.Get(ctx, "gone")
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, s.Delete(ctx, "gone"), "deleting a missing key is not an error")
	})

	t.Run("keys by prefix", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "backup_u1_2", "{}"))
		require.NoError(t, s.Set(ctx, "backup_u1_1", "{}"))
		require.NoError(t, s.Set(ctx, "backup_u2_1", "{}"))
		keys, err := s.Keys(ctx, kv.BackupPrefix("u1"))
		require.NoError(t, err)
		assert.Equal(t, []string{"backup_u1_1", "backup_u1_2"}, keys)

		keys, err = s.Keys(ctx, "zzz")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("json helpers", func(t *testing.T) {
		type doc struct {
			A int `json:"a"`
		}
		require.NoError(t, kv.SetJSON(ctx, s, "doc", doc{A: 7}))
		var got doc
		ok, err := kv.GetJSON(ctx, s, "doc", &got)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 7, got.A)

		ok, err = kv.GetJSON(ctx, s, "absent", &got)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.Set(ctx, "broken", "{"))
		_, err = kv.GetJSON(ctx, s, "broken", &got)
		assert.Error(t, err)
	})
}
