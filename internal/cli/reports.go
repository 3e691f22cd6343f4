package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"smartfinance/internal/core"
	"smartfinance/internal/insights"
	"smartfinance/internal/records"
)

func newStatsCommand(a *app) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Income, expenses and balance over a period",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			store, user, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			st := store.GetStats(ctx, core.Period(period))
			return a.out(cmd).result(st, func(w io.Writer) error {
				return printStats(w, st, user.Currency)
			})
		}),
	}

	cmd.Flags().StringVarP(&period, "period", "p", string(core.PeriodMonth), "today, week, month, quarter, year or all")
	return cmd
}

func printStats(w io.Writer, st records.Stats, currency string) error {
	fmt.Fprintf(w, "Period:       %s\n", st.Period)
	fmt.Fprintf(w, "Income:       %s\n", insights.FormatCurrency(st.Income, currency))
	fmt.Fprintf(w, "Expenses:     %s\n", insights.FormatCurrency(st.Expenses, currency))
	sign := ""
	if st.Balance.IsNegative() {
		sign = "-"
	}
	fmt.Fprintf(w, "Balance:      %s%s\n", sign, insights.FormatCurrency(st.Balance, currency))
	fmt.Fprintf(w, "Transactions: %d\n", st.TransactionCount)
	if len(st.CategoryStats) == 0 {
		return nil
	}

	ids := make([]string, 0, len(st.CategoryStats))
	for id := range st.CategoryStats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		cs := st.CategoryStats[id]
		rows = append(rows, []string{id,
			insights.FormatCurrency(cs.Income, currency),
			insights.FormatCurrency(cs.Expenses, currency),
			fmt.Sprint(cs.Count)})
	}
	fmt.Fprintln(w)
	return table(w, []string{"CATEGORY", "INCOME", "EXPENSES", "COUNT"}, rows)
}

func newTrendCommand(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Daily expense totals",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			store, user, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			trend := store.GetSpendingTrend(days)
			return a.out(cmd).result(trend, func(w io.Writer) error {
				dates := trend.Dates()
				if len(dates) == 0 {
					_, err := fmt.Fprintln(w, "No expenses in this window")
					return err
				}
				rows := make([][]string, 0, len(dates))
				for _, d := range dates {
					rows = append(rows, []string{d, insights.FormatCurrency(trend[d], user.Currency)})
				}
				return table(w, []string{"DATE", "SPENT"}, rows)
			})
		}),
	}

	cmd.Flags().IntVar(&days, "days", 30, "trailing window in days")
	return cmd
}

func newInsightsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Up to three observations about recent activity",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			store, _, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			list := insights.New(store).Generate(ctx)
			return a.out(cmd).result(list, func(w io.Writer) error {
				return printInsights(w, list)
			})
		}),
	}
}

func printInsights(w io.Writer, list []insights.Insight) error {
	for _, in := range list {
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", in.Icon, in.Title, in.Message); err != nil {
			return err
		}
	}
	return nil
}

func newDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Greeting, monthly summary, insights, budgets and recent activity",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			store, user, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			d := insights.New(store).Dashboard(ctx, user)
			return a.out(cmd).result(d, func(w io.Writer) error {
				return printDashboard(w, d, store.Now())
			})
		}),
	}
}

func printDashboard(w io.Writer, d insights.Dashboard, now time.Time) error {
	s := d.Summary
	fmt.Fprintf(w, "Good %s, %s! %s\n\n", d.Greeting.TimeOfDay, d.Greeting.Name, d.Greeting.Message)
	fmt.Fprintf(w, "Balance   %s (%s)\n", insights.FormatCurrency(s.Current.Balance, s.Currency), s.BalanceChange.Text)
	fmt.Fprintf(w, "Income    %s (%s)\n", insights.FormatCurrency(s.Current.Income, s.Currency), s.IncomeChange.Text)
	fmt.Fprintf(w, "Expenses  %s (%s)\n", insights.FormatCurrency(s.Current.Expenses, s.Currency), s.ExpensesChange.Text)
	fmt.Fprintf(w, "Savings   %s of %s (%.0f%%)\n\n",
		insights.FormatCurrency(s.Savings.Saved, s.Currency),
		insights.FormatCurrency(s.Savings.Goal, s.Currency),
		s.Savings.Percentage)

	if err := printInsights(w, d.Insights); err != nil {
		return err
	}

	if len(d.Categories) > 0 {
		fmt.Fprintln(w)
		rows := make([][]string, 0, len(d.Categories))
		for _, p := range d.Categories {
			rows = append(rows, []string{
				p.Icon + " " + p.Category.Name,
				insights.FormatCurrency(p.Spent, s.Currency),
				insights.FormatCurrency(p.Budget, s.Currency),
				fmt.Sprintf("%.0f%%", p.Percentage),
				p.Status,
			})
		}
		if err := table(w, []string{"CATEGORY", "SPENT", "BUDGET", "USED", "STATUS"}, rows); err != nil {
			return err
		}
	}

	if len(d.Recent) > 0 {
		fmt.Fprintln(w)
		rows := make([][]string, 0, len(d.Recent))
		for _, t := range d.Recent {
			rows = append(rows, []string{insights.RelativeDate(t.Date, now), string(t.Type), insights.FormatCurrency(t.Amount, s.Currency), t.Description})
		}
		return table(w, []string{"WHEN", "TYPE", "AMOUNT", "DESCRIPTION"}, rows)
	}
	return nil
}
