package postgres

import (
	"context"
	"os"
	"testing"

	"smartfinance/internal/kv/kvtest"
)

// Runs against a disposable database named by TEST_DATABASE_URL.
func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	s, err := Open(ctx, url)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if _, err := s.pool.Exec(ctx, `TRUNCATE kv`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	kvtest.Run(t, s)

	// Running migrations again is a no-op.
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
