package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"smartfinance/internal/core"
	"smartfinance/internal/events"
	"smartfinance/internal/kv"
	"smartfinance/internal/log"
)

// ExportVersion tags every snapshot.
const ExportVersion = "1.0"

// Formats understood by DecodeImport and Snapshot.Encode.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Snapshot is a full copy of a user's records.
type Snapshot struct {
	Transactions []core.Transaction         `json:"transactions" yaml:"transactions"`
	Categories   []core.Category            `json:"categories" yaml:"categories"`
	Budgets      map[string]decimal.Decimal `json:"budgets" yaml:"budgets"`
	Settings     core.Settings              `json:"settings" yaml:"settings"`
	ExportDate   time.Time                  `json:"exportDate" yaml:"exportDate"`
	Version      string                     `json:"version" yaml:"version"`
}

// ImportPayload is the document accepted by ImportData. A nil Transactions
// or Categories means the field was absent.
type ImportPayload struct {
	Transactions []core.Transaction         `json:"transactions" yaml:"transactions"`
	Categories   []core.Category            `json:"categories" yaml:"categories"`
	Budgets      map[string]decimal.Decimal `json:"budgets" yaml:"budgets"`
	Settings     *core.SettingsPatch        `json:"settings" yaml:"settings"`
	Version      string                     `json:"version" yaml:"version"`
}

// Backup is a stored pre-import snapshot.
type Backup struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportData returns a snapshot of every collection.
func (s *Store) ExportData() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Transactions: append([]core.Transaction{}, s.transactions...),
		Categories:   cloneCategories(s.categories),
		Budgets:      cloneBudgets(s.budgets),
		Settings:     s.settings.Clone(),
		ExportDate:   s.now().UTC(),
		Version:      ExportVersion,
	}
}

// Encode writes the snapshot as JSON or YAML.
func (snap Snapshot) Encode(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// Payload turns a snapshot into an import document.
func (snap Snapshot) Payload() ImportPayload {
	settings := snap.Settings.Clone()
	return ImportPayload{
		Transactions: append([]core.Transaction{}, snap.Transactions...),
		Categories:   cloneCategories(snap.Categories),
		Budgets:      cloneBudgets(snap.Budgets),
		Settings: &core.SettingsPatch{
			Theme:               &settings.Theme,
			Currency:            &settings.Currency,
			Notifications:       &settings.Notifications,
			Language:            &settings.Language,
			SupportedCurrencies: settings.SupportedCurrencies,
		},
		Version: snap.Version,
	}
}

// DecodeImport reads an import document. Shape errors in the transactions
// or categories fields are reported as *ImportError.
func DecodeImport(r io.Reader, format string) (ImportPayload, error) {
	var p ImportPayload
	switch strings.ToLower(format) {
	case "", FormatJSON:
		if err := json.NewDecoder(r).Decode(&p); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return ImportPayload{}, shapeError(typeErr.Field, err)
			}
			return ImportPayload{}, &ImportError{Reason: "malformed document", Err: err}
		}
	case FormatYAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return ImportPayload{}, fmt.Errorf("read import: %w", err)
		}
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
			var typeErr *yaml.TypeError
			if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
				return ImportPayload{}, shapeError(yamlField(typeErr.Errors[0]), err)
			}
			return ImportPayload{}, &ImportError{Reason: "malformed document", Err: err}
		}
	default:
		return ImportPayload{}, fmt.Errorf("unknown format %q", format)
	}
	return p, nil
}

func shapeError(field string, err error) *ImportError {
	switch {
	case strings.HasPrefix(field, "transactions"):
		return &ImportError{Reason: "transactions missing", Err: err}
	case strings.HasPrefix(field, "categories"):
		return &ImportError{Reason: "categories missing", Err: err}
	default:
		return &ImportError{Reason: "malformed document", Err: err}
	}
}

// yamlField maps a yaml type error to the top level field it is about. The
// decoder names the Go type, not the key.
func yamlField(msg string) string {
	switch {
	case strings.Contains(msg, "core.Transaction"):
		return "transactions"
	case strings.Contains(msg, "core.Category"):
		return "categories"
	}
	return ""
}

// ImportData replaces transactions, categories and budgets with the payload
// and merges its settings. The current state is written to a backup key
// first. Missing transactions or categories fail with *ImportError before
// anything is written.
func (s *Store) ImportData(ctx context.Context, p ImportPayload) (events.ImportStats, error) {
	if p.Transactions == nil {
		return events.ImportStats{}, &ImportError{Reason: "transactions missing"}
	}
	if p.Categories == nil {
		return events.ImportStats{}, &ImportError{Reason: "categories missing"}
	}
	if !s.Active() {
		s.dropped(ctx, "import")
		return events.ImportStats{}, nil
	}

	s.mu.Lock()
	backup := s.snapshotLocked()
	backupKey := fmt.Sprintf("%s%d", kv.BackupPrefix(s.userID), backup.ExportDate.UnixMilli())
	if err := kv.SetJSON(ctx, s.kv, backupKey, backup); err != nil {
		s.mu.Unlock()
		return events.ImportStats{}, fmt.Errorf("write backup: %w", err)
	}

	txns := append([]core.Transaction{}, p.Transactions...)
	cats := cloneCategories(p.Categories)
	budgets := cloneBudgets(p.Budgets)
	settings := s.settings.Clone()
	if p.Settings != nil {
		settings = p.Settings.Apply(settings)
	}

	if err := s.saveTransactions(ctx, txns); err != nil {
		s.mu.Unlock()
		return events.ImportStats{}, err
	}
	if err := s.saveCategories(ctx, cats); err != nil {
		s.mu.Unlock()
		return events.ImportStats{}, err
	}
	if err := s.saveBudgets(ctx, budgets); err != nil {
		s.mu.Unlock()
		return events.ImportStats{}, err
	}
	if err := s.saveSettings(ctx, settings); err != nil {
		s.mu.Unlock()
		return events.ImportStats{}, err
	}
	s.transactions, s.categories, s.budgets, s.settings = txns, cats, budgets, settings
	s.mu.Unlock()

	stats := events.ImportStats{
		Transactions: len(txns),
		Categories:   len(cats),
		Budgets:      len(budgets),
		BackupKey:    backupKey,
	}
	s.logger.InfoContext(ctx, "Data imported",
		log.FieldUserID, s.userID,
		log.FieldBackupKey, backupKey,
		log.FieldOperation, log.OpImport,
		"transactions", stats.Transactions,
		"categories", stats.Categories)
	s.emit(events.Event{Name: events.DataImported, Import: &stats})
	return stats, nil
}

// ListBackups returns the user's backups, oldest first.
func (s *Store) ListBackups(ctx context.Context) ([]Backup, error) {
	if !s.Active() {
		return []Backup{}, nil
	}
	prefix := kv.BackupPrefix(s.userID)
	keys, err := s.kv.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	backups := make([]Backup, 0, len(keys))
	for _, k := range keys {
		ms, err := strconv.ParseInt(strings.TrimPrefix(k, prefix), 10, 64)
		if err != nil {
			continue
		}
		backups = append(backups, Backup{Key: k, CreatedAt: time.UnixMilli(ms).UTC()})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].CreatedAt.Before(backups[j].CreatedAt) })
	return backups, nil
}

// LoadBackup reads the snapshot stored at key.
func (s *Store) LoadBackup(ctx context.Context, key string) (Snapshot, error) {
	if !strings.HasPrefix(key, kv.BackupPrefix(s.userID)) || !s.Active() {
		return Snapshot{}, ErrNotFound
	}
	var snap Snapshot
	found, err := kv.GetJSON(ctx, s.kv, key, &snap)
	if err != nil {
		return Snapshot{}, err
	}
	if !found {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}
