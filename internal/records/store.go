// Package records owns one user's transactions, categories, budgets and
// settings.
//
// A Store keeps the collections in memory and writes the affected collection
// through to the key-value backend on every mutation, before the in-memory
// state changes. Reads return copies. Each mutation publishes an event on
// the store's bus once the store lock has been released, so listeners may
// call back into the store.
//
// A Store built for an empty user id is inert: reads return empty results
// and writes are dropped without error.
package records

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"smartfinance/internal/core"
	"smartfinance/internal/events"
	"smartfinance/internal/kv"
	"smartfinance/internal/log"
)

type Store struct {
	mu     sync.RWMutex
	kv     kv.Store
	userID string
	bus    *events.Bus
	now    func() time.Time
	loc    *time.Location
	logger *log.Logger

	transactions []core.Transaction // most recent first
	categories   []core.Category
	budgets      map[string]decimal.Decimal
	settings     core.Settings
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the zone transaction dates are read in. Defaults to
// time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentRecords)
		}
	}
}

// WithBus publishes change events on b instead of a private bus.
func WithBus(b *events.Bus) Option {
	return func(s *Store) {
		if b != nil {
			s.bus = b
		}
	}
}

// New loads the records of userID from store. Missing categories and
// settings fall back to the defaults.
func New(ctx context.Context, store kv.Store, userID string, opts ...Option) (*Store, error) {
	s := &Store{
		kv:           store,
		userID:       userID,
		bus:          events.NewBus(),
		now:          time.Now,
		loc:          time.Local,
		logger:       log.FromContext(ctx).WithComponent(log.ComponentRecords),
		transactions: []core.Transaction{},
		categories:   []core.Category{},
		budgets:      map[string]decimal.Decimal{},
		settings:     core.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if userID == "" {
		return s, nil
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Records loaded",
		log.FieldUserID, userID,
		"transactions", len(s.transactions),
		"categories", len(s.categories))
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	var txns []core.Transaction
	if _, err := kv.GetJSON(ctx, s.kv, kv.TransactionsKey(s.userID), &txns); err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	if txns != nil {
		s.transactions = txns
	}

	var cats []core.Category
	found, err := kv.GetJSON(ctx, s.kv, kv.CategoriesKey(s.userID), &cats)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if found && cats != nil {
		s.categories = cats
	} else {
		s.categories = core.DefaultCategories()
	}

	var budgets map[string]decimal.Decimal
	if _, err := kv.GetJSON(ctx, s.kv, kv.BudgetsKey(s.userID), &budgets); err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}
	if budgets != nil {
		s.budgets = budgets
	}

	var settings core.Settings
	found, err = kv.GetJSON(ctx, s.kv, kv.SettingsKey(s.userID), &settings)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if found {
		s.settings = settings
	}
	return nil
}

// UserID returns the owner of the records.
func (s *Store) UserID() string { return s.userID }

// Active reports whether the store belongs to a user. An inactive store
// drops writes.
func (s *Store) Active() bool { return s.userID != "" }

// Bus returns the bus change events are published on.
func (s *Store) Bus() *events.Bus { return s.bus }

// Location returns the zone transaction dates are read in.
func (s *Store) Location() *time.Location { return s.loc }

// Now returns the store clock reading in the store location.
func (s *Store) Now() time.Time { return s.now().In(s.loc) }

func (s *Store) dropped(ctx context.Context, op string) {
	s.logger.WarnContext(ctx, "No active user, write dropped", log.FieldOperation, op)
}

func (s *Store) emit(e events.Event) {
	e.UserID = s.userID
	e.At = s.now().UTC()
	s.bus.Publish(e)
}

func (s *Store) saveTransactions(ctx context.Context, txns []core.Transaction) error {
	if err := kv.SetJSON(ctx, s.kv, kv.TransactionsKey(s.userID), txns); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	return nil
}

func (s *Store) saveCategories(ctx context.Context, cats []core.Category) error {
	if err := kv.SetJSON(ctx, s.kv, kv.CategoriesKey(s.userID), cats); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	return nil
}

func (s *Store) saveBudgets(ctx context.Context, budgets map[string]decimal.Decimal) error {
	if err := kv.SetJSON(ctx, s.kv, kv.BudgetsKey(s.userID), budgets); err != nil {
		return fmt.Errorf("save budgets: %w", err)
	}
	return nil
}

func (s *Store) saveSettings(ctx context.Context, settings core.Settings) error {
	if err := kv.SetJSON(ctx, s.kv, kv.SettingsKey(s.userID), settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Flush writes all four collections to the backend.
func (s *Store) Flush(ctx context.Context) error {
	if !s.Active() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.saveTransactions(ctx, s.transactions); err != nil {
		return err
	}
	if err := s.saveCategories(ctx, s.categories); err != nil {
		return err
	}
	if err := s.saveBudgets(ctx, s.budgets); err != nil {
		return err
	}
	return s.saveSettings(ctx, s.settings)
}

// InitUserData seeds the records of a newly registered user: the default
// categories, no transactions and no budgets.
func InitUserData(ctx context.Context, store kv.Store, userID string) error {
	if err := kv.SetJSON(ctx, store, kv.CategoriesKey(userID), core.DefaultCategories()); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := kv.SetJSON(ctx, store, kv.TransactionsKey(userID), []core.Transaction{}); err != nil {
		return fmt.Errorf("seed transactions: %w", err)
	}
	if err := kv.SetJSON(ctx, store, kv.BudgetsKey(userID), map[string]decimal.Decimal{}); err != nil {
		return fmt.Errorf("seed budgets: %w", err)
	}
	return nil
}
