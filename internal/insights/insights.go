// Package insights derives dashboard figures and advice from a user's
// records. Everything here is a pure function of the record store state and
// its clock.
package insights

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"smartfinance/internal/core"
	"smartfinance/internal/records"
)

// Source is the read side of a record store.
type Source interface {
	GetStats(ctx context.Context, period core.Period) records.Stats
	GetStatsBetween(r core.DateRange) records.Stats
	GetTransactions(ctx context.Context, f records.Filters) []core.Transaction
	GetCategories() []core.Category
	GetCategory(id string) (core.Category, error)
	GetSpendingTrend(days int) records.Trend
	TransactionCount() int
	Now() time.Time
	Location() *time.Location
}

var _ Source = (*records.Store)(nil)

// DefaultSavingsGoal applies when the user has not set one.
var DefaultSavingsGoal = decimal.NewFromInt(500)

const (
	maxInsights          = 3
	frequentWindowDays   = 7
	frequentThreshold    = 20
	greatSavingsRate     = 20.0
	lowSavingsRate       = 10.0
	warningBudgetPercent = 80.0
	overBudgetPercent    = 100.0
)

// Insight types.
const (
	TypeWelcome = "welcome"
	TypeWarning = "warning"
	TypeSuccess = "success"
	TypeTip     = "tip"
	TypeInfo    = "info"
)

// Insight is one ranked piece of advice.
type Insight struct {
	Type       string `json:"type"`
	Icon       string `json:"icon"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Action     string `json:"action,omitempty"`
	ActionText string `json:"actionText,omitempty"`
}

type Engine struct {
	src Source
}

func New(src Source) *Engine {
	return &Engine{src: src}
}

// PercentageChange is the relative change from previous to current. A zero
// previous value reports 100 when current is positive and 0 otherwise.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / math.Abs(previous) * 100
}

// SavingsRate is the share of income left after expenses, in percent. It is
// 0 without income.
func SavingsRate(st records.Stats) float64 {
	if !st.Income.IsPositive() {
		return 0
	}
	return st.Income.Sub(st.Expenses).Div(st.Income).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// Generate returns at most three insights for the current month. A user with
// no transactions at all gets only the welcome insight.
func (e *Engine) Generate(ctx context.Context) []Insight {
	if e.src.TransactionCount() == 0 {
		return []Insight{{
			Type:       TypeWelcome,
			Icon:       "🎉",
			Title:      "Welcome to SmartFinance!",
			Message:    "Start by adding your first transaction to unlock personalized insights.",
			Action:     "add-transaction",
			ActionText: "Add Transaction",
		}}
	}

	st := e.src.GetStats(ctx, core.PeriodMonth)
	var out []Insight

	if st.Expenses.GreaterThan(st.Income) && st.Income.IsPositive() {
		out = append(out, Insight{
			Type:       TypeWarning,
			Icon:       "⚠️",
			Title:      "Spending Alert",
			Message:    "You're spending more than you're earning this month. Consider reviewing your expenses.",
			Action:     "view-budgets",
			ActionText: "Review Budgets",
		})
	}

	rate := SavingsRate(st)
	switch {
	case rate > greatSavingsRate:
		out = append(out, Insight{
			Type:    TypeSuccess,
			Icon:    "💰",
			Title:   "Great Savings!",
			Message: fmt.Sprintf("You're saving %.1f%% of your income. Keep up the excellent work!", rate),
		})
	case rate > 0 && rate < lowSavingsRate:
		out = append(out, Insight{
			Type:    TypeTip,
			Icon:    "💡",
			Title:   "Boost Your Savings",
			Message: "Try to save at least 20% of your income. Small changes in spending can make a big difference.",
		})
	}

	if top, ok := e.topSpendingCategory(st); ok {
		out = append(out, Insight{
			Type:       TypeInfo,
			Icon:       "📊",
			Title:      "Top Spending Category",
			Message:    fmt.Sprintf("You spend most on %s. Consider setting a budget to track this category better.", top.Name),
			Action:     "set-budget",
			ActionText: "Set Budget",
		})
	}

	if n := e.recentCount(ctx); n > frequentThreshold {
		out = append(out, Insight{
			Type:    TypeTip,
			Icon:    "🎯",
			Title:   "Frequent Transactions",
			Message: fmt.Sprintf("You've made %d transactions in the last week. Consider consolidating small expenses.", n),
		})
	}

	if len(out) > maxInsights {
		out = out[:maxInsights]
	}
	return out
}

// topSpendingCategory picks the category with the largest expenses in st,
// breaking ties by id. A category that no longer exists yields nothing.
func (e *Engine) topSpendingCategory(st records.Stats) (core.Category, bool) {
	type entry struct {
		id       string
		expenses decimal.Decimal
	}
	var entries []entry
	for id, cs := range st.CategoryStats {
		if cs.Expenses.IsPositive() {
			entries = append(entries, entry{id: id, expenses: cs.Expenses})
		}
	}
	if len(entries) == 0 {
		return core.Category{}, false
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].expenses.Cmp(entries[j].expenses); c != 0 {
			return c > 0
		}
		return entries[i].id < entries[j].id
	})
	c, err := e.src.GetCategory(entries[0].id)
	if err != nil {
		return core.Category{}, false
	}
	return c, true
}

// recentCount counts transactions dated at most seven days before now,
// future dates included.
func (e *Engine) recentCount(ctx context.Context) int {
	now := e.src.Now()
	window := time.Duration(frequentWindowDays) * 24 * time.Hour
	n := 0
	for _, t := range e.src.GetTransactions(ctx, records.Filters{}) {
		d, err := core.ParseDate(t.Date, e.src.Location())
		if err != nil {
			continue
		}
		if now.Sub(d) <= window {
			n++
		}
	}
	return n
}
