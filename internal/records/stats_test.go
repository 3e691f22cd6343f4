package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartfinance/internal/core"
)

func TestGetStatsMonth(t *testing.T) {
	s := newTestStore(t, nil)
	seedFilterData(t, s)

	st := s.GetStats(context.Background(), core.PeriodMonth)

	assert.Equal(t, core.PeriodMonth, st.Period)
	assert.True(t, st.Income.Equal(dec("2500")), st.Income.String())
	assert.True(t, st.Expenses.Equal(dec("92.75")), st.Expenses.String())
	assert.True(t, st.Balance.Equal(st.Income.Sub(st.Expenses)))
	assert.Equal(t, 3, st.TransactionCount)

	require.Len(t, st.CategoryStats, 3)
	food := st.CategoryStats["cat_food"]
	assert.True(t, food.Income.IsZero())
	assert.True(t, food.Expenses.Equal(dec("80.25")))
	assert.Equal(t, 1, food.Count)
	assert.NotContains(t, st.CategoryStats, "cat_books")

	assert.True(t, st.DateRange.Start.Equal(st.DateRange.End.AddDate(0, -1, 0)))
}

func TestGetStatsSingleExpense(t *testing.T) {
	s := newTestStore(t, nil)
	addTxn(t, s, "Lunch", "120", "cat_food", "2025-06-14", core.Expense)

	st := s.GetStats(context.Background(), "")
	assert.Equal(t, core.PeriodMonth, st.Period)
	cs := st.CategoryStats["cat_food"]
	assert.True(t, cs.Income.IsZero())
	assert.True(t, cs.Expenses.Equal(dec("120")))
	assert.Equal(t, 1, cs.Count)
}

func TestGetStatsBetween(t *testing.T) {
	s := newTestStore(t, nil)
	seedFilterData(t, s)

	st := s.GetStatsBetween(core.PeriodMonth.Previous(testNow))
	assert.Zero(t, st.TransactionCount)
	assert.True(t, st.Balance.IsZero())

	st = s.GetStatsBetween(core.PeriodYear.Range(testNow))
	assert.Equal(t, 4, st.TransactionCount)
	assert.True(t, st.Expenses.Equal(dec("992.75")))
}
