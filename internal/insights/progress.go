package insights

import (
	"context"

	"github.com/shopspring/decimal"

	"smartfinance/internal/core"
	"smartfinance/internal/records"
)

// Budget statuses.
const (
	StatusGood       = "good"
	StatusWarning    = "warning"
	StatusOverBudget = "over-budget"
)

var categoryIcons = map[string]string{
	"cat_food":          "🍔",
	"cat_books":         "📚",
	"cat_transport":     "🚌",
	"cat_entertainment": "🎬",
	"cat_fees":          "🎓",
	"cat_other":         "📦",
}

// CategoryIcon returns the emoji shown next to a category.
func CategoryIcon(id string) string {
	if icon, ok := categoryIcons[id]; ok {
		return icon
	}
	return "📁"
}

// Progress is one category's spending against its budget this month.
type Progress struct {
	Category   core.Category   `json:"category"`
	Icon       string          `json:"icon"`
	Spent      decimal.Decimal `json:"spent"`
	Budget     decimal.Decimal `json:"budget"`
	Percentage float64         `json:"percentage"`
	Status     string          `json:"status"`
}

// BudgetStatus classifies a spent percentage.
func BudgetStatus(pct float64) string {
	switch {
	case pct > overBudgetPercent:
		return StatusOverBudget
	case pct > warningBudgetPercent:
		return StatusWarning
	default:
		return StatusGood
	}
}

// CategoryProgress lists every category in store order with its month
// expenses. A category without budget reports 0%.
func (e *Engine) CategoryProgress(ctx context.Context) []Progress {
	spent := make(map[string]decimal.Decimal)
	for _, t := range e.src.GetTransactions(ctx, records.Filters{DateRange: core.PeriodMonth, Type: core.Expense}) {
		spent[t.Category] = spent[t.Category].Add(t.Amount)
	}

	cats := e.src.GetCategories()
	out := make([]Progress, 0, len(cats))
	for _, c := range cats {
		p := Progress{
			Category: c,
			Icon:     CategoryIcon(c.ID),
			Spent:    spent[c.ID],
			Budget:   c.Budget,
		}
		if c.Budget.IsPositive() {
			p.Percentage = p.Spent.Div(c.Budget).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		p.Status = BudgetStatus(p.Percentage)
		out = append(out, p)
	}
	return out
}
