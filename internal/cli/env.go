package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"smartfinance/internal/amqp"
	"smartfinance/internal/backend"
	"smartfinance/internal/cache"
	"smartfinance/internal/config"
	"smartfinance/internal/core"
	"smartfinance/internal/events"
	"smartfinance/internal/kv"
	"smartfinance/internal/log"
	"smartfinance/internal/records"
	"smartfinance/internal/session"
)

const drainTimeout = 5 * time.Second

// errNoSession is returned by commands that need a signed-in user.
var errNoSession = fmt.Errorf("%w: run `smartfinance login` or `smartfinance register` first", session.ErrNotLoggedIn)

// env is what a command runs against: configuration, logger, the key-value
// namespace and the optional integrations.
type env struct {
	cfg      *config.Config
	logger   *log.Logger
	kv       kv.Store
	sessions *session.Manager
	loc      *time.Location
	now      func() time.Time

	cache     *cache.LRUCache[string]
	publisher *amqp.Client
	sheets    backend.Spreadsheet
	cleanup   func() error

	bus       *events.Bus
	forwarder *amqp.Forwarder
}

// opener builds the env of one command invocation. minLevel is the lowest
// log level the command wants to see.
type opener func(ctx context.Context, minLevel slog.Level, stderr io.Writer) (*env, error)

// openEnv loads .env and the configuration, sets up logging and opens the
// configured backend.
func openEnv(ctx context.Context, minLevel slog.Level, stderr io.Writer) (*env, error) {
	LoadEnvFile()
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	logger := SetupLogger(cfg, stderr, minLevel)
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	res, err := InitBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	e := newEnv(cfg, logger, res.Store, loc, time.Now)
	e.cache = res.Cache
	e.publisher = res.Publisher
	e.sheets = res.Sheets
	e.cleanup = res.Cleanup
	return e, nil
}

func newEnv(cfg *config.Config, logger *log.Logger, store kv.Store, loc *time.Location, now func() time.Time) *env {
	return &env{
		cfg:      cfg,
		logger:   logger,
		kv:       store,
		sessions: session.New(store, session.WithClock(now), session.WithLogger(logger)),
		loc:      loc,
		now:      now,
		bus:      events.NewBus(),
	}
}

// storeOptions are the options of every record store the command opens.
// Record events reach the change feed when a broker is connected.
func (e *env) storeOptions() []records.Option {
	if e.publisher != nil && e.forwarder == nil {
		e.forwarder = amqp.NewForwarder(e.publisher, 0, e.logger)
		e.forwarder.Attach(e.bus)
	}
	return []records.Option{
		records.WithClock(e.now),
		records.WithLocation(e.loc),
		records.WithLogger(e.logger),
		records.WithBus(e.bus),
	}
}

// openStore opens the record store of the signed-in user.
func (e *env) openStore(ctx context.Context) (*records.Store, core.User, error) {
	store, user, err := e.sessions.OpenStore(log.NewContext(ctx, e.logger), e.storeOptions()...)
	if err != nil {
		return nil, core.User{}, err
	}
	if !store.Active() {
		return nil, core.User{}, errNoSession
	}
	return store, user, nil
}

// today is the current date in the configured location.
func (e *env) today() string {
	return e.now().In(e.loc).Format(core.DateLayout)
}

// close publishes the queued change events and releases the backend.
func (e *env) close(ctx context.Context) error {
	if e.forwarder != nil {
		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
		e.forwarder.Drain(drainCtx)
		cancel()
	}
	if e.cleanup == nil {
		return nil
	}
	if err := e.cleanup(); err != nil {
		return fmt.Errorf("close backend: %w", err)
	}
	return nil
}

