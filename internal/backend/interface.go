package backend

import (
	"context"
	"time"

	"smartfinance/internal/amqp"
	"smartfinance/internal/cache"
	"smartfinance/internal/kv"
	"smartfinance/internal/sheets"
)

// Spreadsheet is the export target: a sheet store that can be written and
// read back.
type Spreadsheet interface {
	sheets.TableWriter
	sheets.TableReader
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the opened resources and one cleanup function
// releasing all of them.
type BackendResult struct {
	// Store is the key-value namespace, wrapped in a cache when enabled.
	Store kv.Store
	// Cache is nil when caching is disabled.
	Cache *cache.LRUCache[string]
	// Publisher is nil when no broker is configured or it could not be
	// reached.
	Publisher *amqp.Client
	// Sheets is nil when no spreadsheet is configured.
	Sheets  Spreadsheet
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	DatabaseURL string

	// Read cache in front of the store, disabled when CacheSize is 0
	CacheSize int
	CacheTTL  time.Duration

	// Change feed, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string

	// Google Sheets export, disabled when GoogleSpreadsheetID is empty
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
