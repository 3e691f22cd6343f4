package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"smartfinance/internal/config"
	"smartfinance/internal/kv"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Error("sheets is not a kv backend")
	}
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "sqlite,postgres,memory" {
		t.Errorf("GetBackendTypeStrings() = %s", got)
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}

	app := &config.Config{
		KVBackend:    "postgres",
		DatabaseURL:  "postgres://u:p@localhost/db",
		KVCacheSize:  10,
		KVCacheTTL:   time.Minute,
		AMQPURL:      "amqp://localhost",
		AMQPExchange: "smartfinance",
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != PostgresBackend || cfg.DatabaseURL != app.DatabaseURL || cfg.CacheSize != 10 {
		t.Errorf("unexpected config: %+v", cfg)
	}

	app.KVBackend = "redis"
	if _, err := FromAppConfig(app); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path"},
		{"postgres without url", Config{Type: PostgresBackend}, "database URL"},
		{"negative cache", Config{Type: MemoryBackend, CacheSize: -1}, "cache size"},
		{"amqp without exchange", Config{Type: MemoryBackend, AMQPURL: "amqp://x"}, "AMQP exchange"},
		{"sheets without credentials", Config{Type: MemoryBackend, GoogleSpreadsheetID: "id"}, "service account"},
		{"unknown", Config{Type: "redis"}, "invalid backend type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend_MemoryWithCache(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend, CacheSize: 4, CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if res.Cache == nil {
		t.Fatal("expected cache to be enabled")
	}
	if _, ok := res.Store.(*kv.Cached); !ok {
		t.Fatalf("store should be cached, got %T", res.Store)
	}
	if res.Publisher != nil || res.Sheets != nil {
		t.Error("optional integrations should be disabled")
	}

	if err := res.Store.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if res.Cache.Size() != 1 {
		t.Errorf("cache size = %d, want 1", res.Cache.Size())
	}
}

func TestCreateBackend_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "kv.db")

	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if res.Cache != nil {
		t.Error("cache should be disabled")
	}
	if err := res.Store.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := res.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	res, err = NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer res.Cleanup()
	v, ok, err := res.Store.Get(ctx, "theme")
	if err != nil || !ok || v != "dark" {
		t.Fatalf("Get() = %q, %v, %v", v, ok, err)
	}
}

func TestCreateBackend_SheetsFailureIsNotFatal(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:                     MemoryBackend,
		GoogleSpreadsheetID:      "sheet",
		GoogleServiceAccountFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()
	if res.Sheets != nil {
		t.Error("sheets should be disabled when credentials cannot be read")
	}
}
