package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartfinance/internal/amqp"
	"smartfinance/internal/cache"
	"smartfinance/internal/kv"
	"smartfinance/internal/kv/postgres"
	"smartfinance/internal/kv/sqlite"
	"smartfinance/internal/log"
	gsheet "smartfinance/internal/sheets/google"
)

// amqpConnectTimeout bounds the startup retries against the broker.
const amqpConnectTimeout = 10 * time.Second

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend. Optional integrations that
// fail to start are logged and left nil; only the store is mandatory.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, closeStore, err := f.openStore(ctx, config)
	if err != nil {
		return nil, err
	}
	cleanups := []CleanupFunc{closeStore}

	res := &BackendResult{Store: store}

	if config.CacheSize > 0 {
		res.Cache = cache.NewLRUCache[string](config.CacheSize, config.CacheTTL)
		res.Store = kv.NewCached(store, res.Cache)
		f.logger.InfoContext(ctx, "Enabled kv read cache",
			"size", config.CacheSize,
			"ttl", config.CacheTTL.String())
	}

	if config.AMQPURL != "" {
		client := amqp.NewClient(config.AMQPURL, config.AMQPExchange, f.logger)
		connectCtx, cancel := context.WithTimeout(ctx, amqpConnectTimeout)
		err := client.Connect(connectCtx)
		cancel()
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change feed",
				log.FieldError, err.Error())
		} else {
			res.Publisher = client
			cleanups = append(cleanups, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client", "exchange", config.AMQPExchange)
		}
	}

	if config.GoogleSpreadsheetID != "" {
		cli, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize Google Sheets client, export disabled",
				log.FieldError, err.Error())
		} else {
			res.Sheets = cli
			f.logger.InfoContext(ctx, "Initialized Google Sheets client")
		}
	}

	res.Cleanup = func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			if cleanups[i] == nil {
				continue
			}
			if err := cleanups[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return res, nil
}

func (f *DefaultFactory) openStore(ctx context.Context, config Config) (kv.Store, CleanupFunc, error) {
	switch config.Type {
	case SQLiteBackend:
		s, err := sqlite.Open(ctx, config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return s, s.Close, nil
	case PostgresBackend:
		s, err := postgres.Open(ctx, config.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Postgres backend")
		return s, s.Close, nil
	case MemoryBackend:
		f.logger.InfoContext(ctx, "Initialized memory backend")
		return kv.NewMemory(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
