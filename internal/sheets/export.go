package sheets

import (
	"context"
	"fmt"
	"time"

	"smartfinance/internal/records"
)

// Result names the ranges an export wrote.
type Result struct {
	TransactionsRef string `json:"transactionsRef"`
	CategoriesRef   string `json:"categoriesRef"`
}

// Exporter writes snapshots to a year-prefixed pair of sheets.
type Exporter struct {
	writer TableWriter
	base   string
}

func NewExporter(w TableWriter, baseName string) *Exporter {
	return &Exporter{writer: w, base: baseName}
}

// Export replaces the transactions and categories sheets of the snapshot's
// export year.
func (e *Exporter) Export(ctx context.Context, snap records.Snapshot) (Result, error) {
	name := SheetName(e.base, snap.ExportDate.Year())

	txRef, err := e.writer.WriteTable(ctx, name, TransactionRows(snap))
	if err != nil {
		return Result{}, fmt.Errorf("write %s: %w", name, err)
	}
	catName := CategoriesSheetName(name)
	catRef, err := e.writer.WriteTable(ctx, catName, CategoryRows(snap))
	if err != nil {
		return Result{}, fmt.Errorf("write %s: %w", catName, err)
	}
	return Result{TransactionsRef: txRef, CategoriesRef: catRef}, nil
}

// ReadPayload reads the sheets of year back into an import document. Budgets
// and settings are left to the store.
func ReadPayload(ctx context.Context, r TableReader, base string, year int, now time.Time) (records.ImportPayload, error) {
	name := SheetName(base, year)
	txValues, err := r.ReadTable(ctx, name)
	if err != nil {
		return records.ImportPayload{}, fmt.Errorf("read %s: %w", name, err)
	}
	txns, err := ParseTransactionRows(txValues, now)
	if err != nil {
		return records.ImportPayload{}, &records.ImportError{Reason: "transactions missing", Err: err}
	}

	catName := CategoriesSheetName(name)
	catValues, err := r.ReadTable(ctx, catName)
	if err != nil {
		return records.ImportPayload{}, fmt.Errorf("read %s: %w", catName, err)
	}
	cats, err := ParseCategoryRows(catValues)
	if err != nil {
		return records.ImportPayload{}, &records.ImportError{Reason: "categories missing", Err: err}
	}

	return records.ImportPayload{
		Transactions: txns,
		Categories:   cats,
		Version:      records.ExportVersion,
	}, nil
}
