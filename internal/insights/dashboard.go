package insights

import (
	"context"

	"smartfinance/internal/core"
	"smartfinance/internal/records"
)

const recentLimit = 5

// Dashboard bundles everything the home screen shows.
type Dashboard struct {
	Greeting   Greeting           `json:"greeting"`
	Summary    Summary            `json:"summary"`
	Insights   []Insight          `json:"insights"`
	Categories []Progress         `json:"categories"`
	Recent     []core.Transaction `json:"recent"`
	Trend      records.Trend      `json:"trend"`
}

// Dashboard computes the full home screen for user.
func (e *Engine) Dashboard(ctx context.Context, user core.User) Dashboard {
	return Dashboard{
		Greeting:   NewGreeting(e.src.Now().Hour(), user),
		Summary:    e.Summary(ctx, user),
		Insights:   e.Generate(ctx),
		Categories: e.CategoryProgress(ctx),
		Recent: e.src.GetTransactions(ctx, records.Filters{
			SortBy:    "date",
			SortOrder: records.SortDesc,
			Limit:     recentLimit,
		}),
		Trend: e.src.GetSpendingTrend(30),
	}
}
