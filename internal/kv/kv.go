// Package kv is the shared string key-value namespace the record store and
// the session persist into. Values are JSON documents; writers are
// last-write-wins per key.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Store is a flat key-value namespace.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys lists every key starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("kv store closed")

// Global keys, shared by every user.
const (
	KeyUser          = "user"
	KeyIsLoggedIn    = "isLoggedIn"
	KeyTheme         = "theme"
	KeyRememberLogin = "rememberLogin"
)

// Per-user key prefixes.
const (
	PrefixTransactions = "transactions_"
	PrefixCategories   = "categories_"
	PrefixBudgets      = "budgets_"
	PrefixSettings     = "settings_"
	PrefixBackup       = "backup_"
)

func TransactionsKey(userID string) string { return PrefixTransactions + userID }
func CategoriesKey(userID string) string   { return PrefixCategories + userID }
func BudgetsKey(userID string) string      { return PrefixBudgets + userID }
func SettingsKey(userID string) string     { return PrefixSettings + userID }

// BackupPrefix is the prefix shared by every backup of userID.
func BackupPrefix(userID string) string { return PrefixBackup + userID + "_" }

// GetJSON decodes the value at key into v. It reports false, leaving v
// untouched, when the key does not exist.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}
