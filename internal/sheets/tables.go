// Package sheets renders a record snapshot as spreadsheet tables and reads
// such tables back into an import payload.
package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smartfinance/internal/core"
	"smartfinance/internal/records"
)

// Column headers. Readers locate columns by header, so column order may be
// changed by hand in the spreadsheet.
var (
	TransactionHeader = []any{"ID", "Date", "Description", "Category ID", "Category", "Type", "Amount", "Notes"}
	CategoryHeader    = []any{"ID", "Category", "Color", "Budget", "Spent"}
)

// SheetName returns "<year> <base>" unless base already starts with a
// four-digit year.
func SheetName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

// CategoriesSheetName is the companion sheet of a transactions sheet.
func CategoriesSheetName(transactionsSheet string) string {
	return transactionsSheet + " Categories"
}

// TransactionRows renders the snapshot transactions in stored order.
func TransactionRows(snap records.Snapshot) [][]any {
	names := make(map[string]string, len(snap.Categories))
	for _, c := range snap.Categories {
		names[c.ID] = c.Name
	}
	rows := make([][]any, 0, len(snap.Transactions)+1)
	rows = append(rows, TransactionHeader)
	for _, t := range snap.Transactions {
		name, ok := names[t.Category]
		if !ok {
			name = t.Category
		}
		rows = append(rows, []any{
			t.ID, t.Date, t.Description, t.Category, name, string(t.Type), t.Amount.StringFixed(2), t.Notes,
		})
	}
	return rows
}

// CategoryRows renders every category with its total expenses across the
// snapshot.
func CategoryRows(snap records.Snapshot) [][]any {
	spent := map[string]decimal.Decimal{}
	for _, t := range snap.Transactions {
		if t.Type == core.Expense {
			spent[t.Category] = spent[t.Category].Add(t.Amount)
		}
	}
	rows := make([][]any, 0, len(snap.Categories)+1)
	rows = append(rows, CategoryHeader)
	for _, c := range snap.Categories {
		rows = append(rows, []any{c.ID, c.Name, c.Color, c.Budget.StringFixed(2), spent[c.ID].StringFixed(2)})
	}
	return rows
}

// ParseTransactionRows reads rows written by TransactionRows. Rows without an
// id get a fresh one stamped with now.
func ParseTransactionRows(values [][]any, now time.Time) ([]core.Transaction, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("transactions sheet is empty")
	}
	cols, err := columns(values[0], "ID", "Date", "Description", "Category ID", "Type", "Amount", "Notes")
	if err != nil {
		return nil, err
	}

	out := make([]core.Transaction, 0, len(values)-1)
	for i, raw := range values[1:] {
		row := toStrings(raw)
		if blank(row) {
			continue
		}
		amount, err := parseAmountCell(safeGet(row, cols["Amount"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		typ := core.TransactionType(strings.ToLower(safeGet(row, cols["Type"])))
		if !typ.Valid() {
			return nil, fmt.Errorf("row %d: %w", i+2, core.ErrInvalidType)
		}
		id := safeGet(row, cols["ID"])
		if id == "" {
			id = core.NewID("txn", now)
		}
		out = append(out, core.Transaction{
			ID:          id,
			Description: safeGet(row, cols["Description"]),
			Amount:      amount,
			Category:    safeGet(row, cols["Category ID"]),
			Date:        safeGet(row, cols["Date"]),
			Type:        typ,
			Notes:       safeGet(row, cols["Notes"]),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return out, nil
}

// ParseCategoryRows reads rows written by CategoryRows. The Spent column is
// derived and ignored.
func ParseCategoryRows(values [][]any) ([]core.Category, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("categories sheet is empty")
	}
	cols, err := columns(values[0], "ID", "Category", "Color", "Budget")
	if err != nil {
		return nil, err
	}

	out := make([]core.Category, 0, len(values)-1)
	for i, raw := range values[1:] {
		row := toStrings(raw)
		if blank(row) {
			continue
		}
		id := safeGet(row, cols["ID"])
		if id == "" {
			return nil, fmt.Errorf("row %d: missing category id", i+2)
		}
		budget, err := parseAmountCell(safeGet(row, cols["Budget"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, core.Category{
			ID:     id,
			Name:   safeGet(row, cols["Category"]),
			Color:  safeGet(row, cols["Color"]),
			Budget: budget,
		})
	}
	return out, nil
}

func columns(header []any, names ...string) (map[string]int, error) {
	headers := toStrings(header)
	cols := make(map[string]int, len(names))
	var missing []string
	for _, name := range names {
		idx := indexOf(headers, name)
		if idx == -1 {
			missing = append(missing, name)
			continue
		}
		cols[name] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}
	return cols, nil
}

// parseAmountCell accepts a formatted cell such as "1,234.50" or "$12". An
// empty cell is zero.
func parseAmountCell(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.' && r != '-'
	})
	if s == "" {
		return decimal.Zero, nil
	}
	return core.ParseAmount(s)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(v, target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
