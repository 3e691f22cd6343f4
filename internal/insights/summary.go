package insights

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"smartfinance/internal/core"
	"smartfinance/internal/records"
)

// Change directions.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

// Change is a month-over-month movement with its display text.
type Change struct {
	Percentage float64 `json:"percentage"`
	Direction  string  `json:"direction"`
	Text       string  `json:"text"`
}

// Savings tracks the month's balance against the user's goal.
type Savings struct {
	Saved      decimal.Decimal `json:"saved"`
	Goal       decimal.Decimal `json:"goal"`
	Percentage float64         `json:"percentage"`
}

// Summary is the dashboard headline for the current month.
type Summary struct {
	Currency       string        `json:"currency"`
	Current        records.Stats `json:"current"`
	Previous       records.Stats `json:"previous"`
	BalanceChange  Change        `json:"balanceChange"`
	IncomeChange   Change        `json:"incomeChange"`
	ExpensesChange Change        `json:"expensesChange"`
	Savings        Savings       `json:"savings"`
}

// NewChange builds the indicator comparing current with previous. fallback,
// when set, replaces the text while current is zero.
func NewChange(current, previous decimal.Decimal, fallback string) Change {
	pct := PercentageChange(current.InexactFloat64(), previous.InexactFloat64())
	c := Change{Percentage: pct}
	switch {
	case pct > 0:
		c.Direction = Positive
		c.Text = fmt.Sprintf("+%.1f%% from last month", pct)
	case pct < 0:
		c.Direction = Negative
		c.Text = fmt.Sprintf("%.1f%% from last month", pct)
	default:
		c.Direction = Neutral
		c.Text = "No change from last month"
	}
	if fallback != "" && current.IsZero() {
		c.Text = fallback
	}
	return c
}

// NewSavings computes progress of balance towards goal. A nil or zero goal
// falls back to DefaultSavingsGoal.
func NewSavings(balance decimal.Decimal, goal *decimal.Decimal) Savings {
	g := DefaultSavingsGoal
	if goal != nil && !goal.IsZero() {
		g = *goal
	}
	saved := decimal.Max(decimal.Zero, balance)
	return Savings{
		Saved:      saved,
		Goal:       g,
		Percentage: saved.Div(g).Mul(decimal.NewFromInt(100)).InexactFloat64(),
	}
}

// Summary compares this month with the previous month window. user supplies
// the display currency and the savings goal.
func (e *Engine) Summary(ctx context.Context, user core.User) Summary {
	cur := e.src.GetStats(ctx, core.PeriodMonth)
	prev := e.src.GetStatsBetween(core.PeriodMonth.Previous(e.src.Now()))

	currency := user.Currency
	if currency == "" {
		currency = "USD"
	}

	return Summary{
		Currency:       currency,
		Current:        cur,
		Previous:       prev,
		BalanceChange:  NewChange(cur.Balance, prev.Balance, "No transactions yet"),
		IncomeChange:   NewChange(cur.Income, prev.Income, "Start adding income"),
		ExpensesChange: NewChange(cur.Expenses, prev.Expenses, "Track your spending"),
		Savings:        NewSavings(cur.Balance, user.SavingsGoal),
	}
}
