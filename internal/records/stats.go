package records

import (
	"context"

	"github.com/shopspring/decimal"

	"smartfinance/internal/core"
)

// CategoryStat is the activity of one category within a window.
type CategoryStat struct {
	Income   decimal.Decimal `json:"income" yaml:"income"`
	Expenses decimal.Decimal `json:"expenses" yaml:"expenses"`
	Count    int             `json:"count" yaml:"count"`
}

// Stats aggregates the transactions of a window.
type Stats struct {
	Period           core.Period             `json:"period" yaml:"period"`
	Income           decimal.Decimal         `json:"income" yaml:"income"`
	Expenses         decimal.Decimal         `json:"expenses" yaml:"expenses"`
	Balance          decimal.Decimal         `json:"balance" yaml:"balance"`
	TransactionCount int                     `json:"transactionCount" yaml:"transactionCount"`
	CategoryStats    map[string]CategoryStat `json:"categoryStats" yaml:"categoryStats"`
	DateRange        core.DateRange          `json:"dateRange" yaml:"dateRange"`
}

// GetStats aggregates the transactions of the named period. An empty period
// means month.
func (s *Store) GetStats(ctx context.Context, period core.Period) Stats {
	if period == "" {
		period = core.PeriodMonth
	}
	r := period.Range(s.Now())
	st := aggregate(s.GetTransactions(ctx, Filters{DateRange: period}))
	st.Period = period
	st.DateRange = r
	return st
}

// GetStatsBetween aggregates the transactions dated within r.
func (s *Store) GetStatsBetween(r core.DateRange) Stats {
	s.mu.RLock()
	txns := append([]core.Transaction(nil), s.transactions...)
	s.mu.RUnlock()

	st := aggregate(s.filterRange(txns, r))
	st.DateRange = r
	return st
}

// TransactionCount returns the number of stored transactions.
func (s *Store) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}

// aggregate sums income and expenses strictly by type. In the per-category
// breakdown anything that is not income counts as an expense.
func aggregate(txns []core.Transaction) Stats {
	st := Stats{
		Income:        decimal.Zero,
		Expenses:      decimal.Zero,
		CategoryStats: map[string]CategoryStat{},
	}
	for _, t := range txns {
		switch t.Type {
		case core.Income:
			st.Income = st.Income.Add(t.Amount)
		case core.Expense:
			st.Expenses = st.Expenses.Add(t.Amount)
		}

		cs, ok := st.CategoryStats[t.Category]
		if !ok {
			cs = CategoryStat{Income: decimal.Zero, Expenses: decimal.Zero}
		}
		if t.Type == core.Income {
			cs.Income = cs.Income.Add(t.Amount)
		} else {
			cs.Expenses = cs.Expenses.Add(t.Amount)
		}
		cs.Count++
		st.CategoryStats[t.Category] = cs
	}
	st.Balance = st.Income.Sub(st.Expenses)
	st.TransactionCount = len(txns)
	return st
}
