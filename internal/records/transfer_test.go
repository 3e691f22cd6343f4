package records

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartfinance/internal/core"
	"smartfinance/internal/events"
	"smartfinance/internal/kv"
)

func TestExportImportRestoresState(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t, nil)
	seedFilterData(t, src)
	require.NoError(t, src.SetBudget(ctx, "cat_food", dec("250")))
	theme := "dark"
	_, err := src.UpdateSettings(ctx, core.SettingsPatch{Theme: &theme})
	require.NoError(t, err)

	snap := src.ExportData()
	assert.Equal(t, ExportVersion, snap.Version)

	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, snap.Encode(&buf, format))

			payload, err := DecodeImport(&buf, format)
			require.NoError(t, err)

			dst := newTestStore(t, nil)
			stats, err := dst.ImportData(ctx, payload)
			require.NoError(t, err)
			assert.Equal(t, 5, stats.Transactions)
			assert.Equal(t, 6, stats.Categories)

			got := dst.ExportData()
			require.Len(t, got.Transactions, len(snap.Transactions))
			for i := range snap.Transactions {
				want, have := snap.Transactions[i], got.Transactions[i]
				assert.Equal(t, want.ID, have.ID)
				assert.Equal(t, want.Description, have.Description)
				assert.True(t, want.Amount.Equal(have.Amount))
				assert.Equal(t, want.Date, have.Date)
				assert.Equal(t, want.Type, have.Type)
				assert.True(t, want.CreatedAt.Equal(have.CreatedAt))
			}
			assert.Equal(t, len(snap.Categories), len(got.Categories))
			assert.True(t, got.Budgets["cat_food"].Equal(dec("250")))
			assert.Equal(t, "dark", got.Settings.Theme)
			assert.Equal(t, snap.Settings.SupportedCurrencies, got.Settings.SupportedCurrencies)
		})
	}
}

func TestImportRequiresCollections(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemory()
	s := newTestStore(t, backing)
	addTxn(t, s, "Keep me", "1", "cat_food", "2025-06-14", core.Expense)

	_, err := s.ImportData(ctx, ImportPayload{Categories: []core.Category{}})
	var ie *ImportError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "Invalid data format: transactions missing", err.Error())

	_, err = s.ImportData(ctx, ImportPayload{Transactions: []core.Transaction{}})
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "Invalid data format: categories missing", err.Error())

	backups, err := s.ListBackups(ctx)
	require.NoError(t, err)
	assert.Empty(t, backups, "no backup before validation passes")
	assert.Equal(t, 1, s.TransactionCount())
}

func TestImportWritesBackupAndMergesSettings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	addTxn(t, s, "Before import", "1", "cat_food", "2025-06-14", core.Expense)

	var imported *events.ImportStats
	s.Bus().Subscribe(events.DataImported, func(e events.Event) { imported = e.Import })

	lang := "fr"
	stats, err := s.ImportData(ctx, ImportPayload{
		Transactions: []core.Transaction{},
		Categories:   []core.Category{{ID: "cat_x", Name: "X"}},
		Settings:     &core.SettingsPatch{Language: &lang},
	})
	require.NoError(t, err)
	require.NotNil(t, imported)
	assert.Equal(t, stats, *imported)

	assert.Zero(t, s.TransactionCount())
	assert.Empty(t, s.Budgets())
	settings := s.Settings()
	assert.Equal(t, "fr", settings.Language)
	assert.Equal(t, "USD", settings.Currency, "settings are merged, not replaced")

	backups, err := s.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, stats.BackupKey, backups[0].Key)
	assert.True(t, strings.HasPrefix(backups[0].Key, "backup_u1_"))

	snap, err := s.LoadBackup(ctx, backups[0].Key)
	require.NoError(t, err)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, "Before import", snap.Transactions[0].Description)

	_, err = s.LoadBackup(ctx, "backup_other_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecodeImportShapeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		doc    string
		want   string
	}{
		{"json transactions object", FormatJSON, `{"transactions": {}, "categories": []}`, "transactions missing"},
		{"json categories string", FormatJSON, `{"transactions": [], "categories": "food"}`, "categories missing"},
		{"json garbage", FormatJSON, `{"transactions": [`, "malformed document"},
		{"yaml transactions map", FormatYAML, "transactions: {a: 1}\ncategories: []\n", "transactions missing"},
		{"yaml categories scalar", FormatYAML, "transactions: []\ncategories: food\n", "categories missing"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeImport(strings.NewReader(tc.doc), tc.format)
			var ie *ImportError
			require.True(t, errors.As(err, &ie), "got %v", err)
			assert.Equal(t, tc.want, ie.Reason)
		})
	}
}

func TestDecodeImportMissingFieldsStayNil(t *testing.T) {
	p, err := DecodeImport(strings.NewReader(`{"categories": []}`), FormatJSON)
	require.NoError(t, err)
	assert.Nil(t, p.Transactions)
	assert.NotNil(t, p.Categories)

	_, err = DecodeImport(strings.NewReader(`{}`), "xml")
	assert.Error(t, err)
}
