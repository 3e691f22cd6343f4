package kv

import (
	"context"

	"smartfinance/internal/cache"
)

// Cached is a write-through Store that serves repeated reads from an LRU
// cache. Misses are not cached.
type Cached struct {
	next  Store
	cache cache.Cache[string]
}

// NewCached wraps next with c.
func NewCached(next Store, c cache.Cache[string]) *Cached {
	return &Cached{next: next, cache: c}
}

func (s *Cached) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		return v, true, nil
	}
	v, ok, err := s.next.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	s.cache.Set(key, v)
	return v, true, nil
}

func (s *Cached) Set(ctx context.Context, key, value string) error {
	if err := s.next.Set(ctx, key, value); err != nil {
		// The backend may or may not hold the new value; drop ours.
		s.cache.Delete(key)
		return err
	}
	s.cache.Set(key, value)
	return nil
}

func (s *Cached) Delete(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return s.next.Delete(ctx, key)
}

func (s *Cached) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.next.Keys(ctx, prefix)
}
