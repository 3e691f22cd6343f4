package sheets

import "context"

// Ports for outbound spreadsheet adapters. A table is a header row followed
// by data rows.
type (
	TableWriter interface {
		// WriteTable replaces the content of the named sheet, creating it when
		// missing, and returns the written range.
		WriteTable(ctx context.Context, name string, rows [][]any) (ref string, err error)
	}

	TableReader interface {
		// ReadTable returns every non-empty row of the named sheet.
		ReadTable(ctx context.Context, name string) ([][]any, error)
	}
)
