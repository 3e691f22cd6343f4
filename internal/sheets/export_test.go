package sheets_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartfinance/internal/core"
	"smartfinance/internal/records"
	"smartfinance/internal/sheets"
	"smartfinance/internal/sheets/memory"
)

var exportDate = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func snapshot() records.Snapshot {
	return records.Snapshot{
		Transactions: []core.Transaction{
			{ID: "txn_2", Description: "Lunch", Amount: decimal.RequireFromString("12.5"), Category: "cat_food", Date: "2025-06-14", Type: core.Expense},
			{ID: "txn_1", Description: "Stipend", Amount: decimal.NewFromInt(400), Category: "cat_other", Date: "2025-06-01", Type: core.Income, Notes: "june"},
			{ID: "txn_0", Description: "Snacks", Amount: decimal.NewFromInt(3), Category: "cat_gone", Date: "2025-06-02", Type: core.Expense},
		},
		Categories: []core.Category{
			{ID: "cat_food", Name: "Food", Color: "#ef4444", Budget: decimal.NewFromInt(300)},
			{ID: "cat_other", Name: "Other", Color: "#64748b", Budget: decimal.NewFromInt(100)},
		},
		ExportDate: exportDate,
		Version:    records.ExportVersion,
	}
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "2025 Transactions", sheets.SheetName("Transactions", 2025))
	assert.Equal(t, "2024 Transactions", sheets.SheetName("2024 Transactions", 2025))
	assert.Equal(t, "", sheets.SheetName("  ", 2025))
	assert.Equal(t, "2025 Transactions Categories", sheets.CategoriesSheetName("2025 Transactions"))
}

func TestTransactionRows(t *testing.T) {
	rows := sheets.TransactionRows(snapshot())

	require.Len(t, rows, 4)
	assert.Equal(t, sheets.TransactionHeader, rows[0])
	assert.Equal(t, []any{"txn_2", "2025-06-14", "Lunch", "cat_food", "Food", "expense", "12.50", ""}, rows[1])
	assert.Equal(t, "cat_gone", rows[3][4])
}

func TestCategoryRows(t *testing.T) {
	rows := sheets.CategoryRows(snapshot())

	require.Len(t, rows, 3)
	assert.Equal(t, []any{"cat_food", "Food", "#ef4444", "300.00", "12.50"}, rows[1])
	assert.Equal(t, []any{"cat_other", "Other", "#64748b", "100.00", "0.00"}, rows[2])
}

func TestExportAndReadPayload(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	res, err := sheets.NewExporter(store, "Transactions").Export(ctx, snapshot())
	require.NoError(t, err)
	assert.Equal(t, "mem:2025 Transactions!A1:4", res.TransactionsRef)
	assert.Equal(t, []string{"2025 Transactions", "2025 Transactions Categories"}, store.Sheets())

	p, err := sheets.ReadPayload(ctx, store, "Transactions", 2025, exportDate)
	require.NoError(t, err)
	require.Len(t, p.Transactions, 3)
	assert.Equal(t, "txn_2", p.Transactions[0].ID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(p.Transactions[0].Amount))
	assert.Equal(t, "june", p.Transactions[1].Notes)
	require.Len(t, p.Categories, 2)
	assert.True(t, decimal.NewFromInt(300).Equal(p.Categories[0].Budget))
}

func TestReadPayloadMissingSheet(t *testing.T) {
	_, err := sheets.ReadPayload(context.Background(), memory.New(), "Transactions", 2025, exportDate)
	assert.Error(t, err)
}

func TestParseTransactionRows(t *testing.T) {
	values := [][]any{
		{"Amount", "Type", "ID", "Date", "Description", "Category ID", "Notes"},
		{"$1,234.50", "Income", "", "2025-06-01", "Bonus", "cat_other", ""},
		{"", "", "", "", "", "", ""},
		{"7", "expense", "txn_9", "2025-06-02", "Bus", "cat_transport"},
	}

	got, err := sheets.ParseTransactionRows(values, exportDate)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, decimal.RequireFromString("1234.50").Equal(got[0].Amount))
	assert.Equal(t, core.Income, got[0].Type)
	assert.Regexp(t, `^txn_\d+_[0-9a-f]{9}$`, got[0].ID)
	assert.Equal(t, "txn_9", got[1].ID)
	assert.Empty(t, got[1].Notes)
}

func TestParseTransactionRowsErrors(t *testing.T) {
	header := []any{"ID", "Date", "Description", "Category ID", "Type", "Amount", "Notes"}

	_, err := sheets.ParseTransactionRows(nil, exportDate)
	assert.Error(t, err)

	_, err = sheets.ParseTransactionRows([][]any{{"ID", "Date"}}, exportDate)
	assert.ErrorContains(t, err, "missing Description")

	_, err = sheets.ParseTransactionRows([][]any{header, {"t", "2025-06-01", "x", "c", "refund", "1", ""}}, exportDate)
	assert.True(t, errors.Is(err, core.ErrInvalidType))
	assert.ErrorContains(t, err, "row 2")

	_, err = sheets.ParseTransactionRows([][]any{header, {"t", "2025-06-01", "x", "c", "expense", "abc", ""}}, exportDate)
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))
}

func TestParseCategoryRowsRequiresID(t *testing.T) {
	_, err := sheets.ParseCategoryRows([][]any{
		{"ID", "Category", "Color", "Budget"},
		{"", "Food", "#fff", "10"},
	})
	assert.ErrorContains(t, err, "missing category id")
}
