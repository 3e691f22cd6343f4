package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"smartfinance/internal/kv/kvtest"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "kv.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	kvtest.Run(t, s)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, "user", `{"id":"u1"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	v, ok, err := s.Get(ctx, "user")
	if err != nil || !ok || v != `{"id":"u1"}` {
		t.Fatalf("expected stored value, got %q %v %v", v, ok, err)
	}
}
