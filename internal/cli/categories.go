package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"smartfinance/internal/core"
	"smartfinance/internal/insights"
	"smartfinance/internal/records"
	"smartfinance/internal/session"
	"smartfinance/internal/validation"
)

func newCategoryCommand(a *app) *cobra.Command {
	catCmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories", "cat"},
		Short:   "Manage categories",
	}
	catCmd.AddCommand(
		newCategoryAddCommand(a),
		newCategoryUpdateCommand(a),
		newCategoryDeleteCommand(a),
		newCategoryListCommand(a),
	)
	return catCmd
}

func parseBudget(s string) (decimal.Decimal, error) {
	d, err := core.ParseAmount(s)
	if err != nil {
		return decimal.Zero, &session.FormError{Fields: map[string]string{"budget": validation.MessageInvalid}}
	}
	return d, nil
}

func checkCategoryName(name string) error {
	if r := validation.Validate(name, validation.RuleCategory, true); !r.IsValid {
		return &session.FormError{Fields: map[string]string{"name": r.Message}}
	}
	return nil
}

func newCategoryAddCommand(a *app) *cobra.Command {
	var in records.NewCategory
	var budget string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			if err := checkCategoryName(in.Name); err != nil {
				return err
			}
			var err error
			if in.Budget, err = parseBudget(budget); err != nil {
				return err
			}

			store, user, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			c, err := store.AddCategory(ctx, in)
			if err != nil {
				return err
			}
			return a.out(cmd).result(c, func(w io.Writer) error {
				return printCategories(w, []core.Category{c}, user.Currency)
			})
		}),
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "category name, letters only (required)")
	cmd.Flags().StringVar(&in.Color, "color", "", "display color (default "+records.DefaultCategoryColor+")")
	cmd.Flags().StringVar(&budget, "budget", "0", "monthly budget")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newCategoryUpdateCommand(a *app) *cobra.Command {
	var name, color, budget string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a category",
		Args:  cobra.ExactArgs(1),
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			var u records.CategoryUpdate
			if cmd.Flags().Changed("name") {
				if err := checkCategoryName(name); err != nil {
					return err
				}
				u.Name = &name
			}
			if cmd.Flags().Changed("color") {
				u.Color = &color
			}
			if cmd.Flags().Changed("budget") {
				d, err := parseBudget(budget)
				if err != nil {
					return err
				}
				u.Budget = &d
			}

			store, user, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			c, err := store.UpdateCategory(ctx, args[0], u)
			if err != nil {
				return err
			}
			return a.out(cmd).result(c, func(w io.Writer) error {
				return printCategories(w, []core.Category{c}, user.Currency)
			})
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new color")
	cmd.Flags().StringVar(&budget, "budget", "", "new monthly budget")

	return cmd
}

func newCategoryDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a category no transaction uses",
		Args:    cobra.ExactArgs(1),
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			store, _, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			c, err := store.DeleteCategory(ctx, args[0])
			if err != nil {
				return err
			}
			return a.out(cmd).result(c, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted category %s\n", c.Name)
				return err
			})
		}),
	}
}

func newCategoryListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories",
		Args:    cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			store, user, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			cats := store.GetCategories()
			return a.out(cmd).result(cats, func(w io.Writer) error {
				return printCategories(w, cats, user.Currency)
			})
		}),
	}
}

func printCategories(w io.Writer, cats []core.Category, currency string) error {
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{c.ID, insights.CategoryIcon(c.ID) + " " + c.Name, c.Color, insights.FormatCurrency(c.Budget, currency)})
	}
	return table(w, []string{"ID", "NAME", "COLOR", "BUDGET"}, rows)
}

func newBudgetCommand(a *app) *cobra.Command {
	budgetCmd := &cobra.Command{
		Use:     "budget",
		Aliases: []string{"budgets"},
		Short:   "Manage the budget map",
	}
	budgetCmd.AddCommand(newBudgetSetCommand(a), newBudgetListCommand(a))
	return budgetCmd
}

func newBudgetSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <amount>",
		Short: "Store a budget for a category",
		Args:  cobra.ExactArgs(2),
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			amount, err := parseBudget(args[1])
			if err != nil {
				return err
			}
			store, user, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			if err := store.SetBudget(ctx, args[0], amount); err != nil {
				return err
			}
			return a.out(cmd).result(map[string]decimal.Decimal{args[0]: amount}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Budget for %s set to %s\n", args[0], insights.FormatCurrency(amount, user.Currency))
				return err
			})
		}),
	}
}

func newBudgetListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored budgets",
		Args:    cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			store, user, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			budgets := store.Budgets()
			return a.out(cmd).result(budgets, func(w io.Writer) error {
				if len(budgets) == 0 {
					_, err := fmt.Fprintln(w, "No budgets")
					return err
				}
				ids := make([]string, 0, len(budgets))
				for id := range budgets {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				rows := make([][]string, 0, len(ids))
				for _, id := range ids {
					rows = append(rows, []string{id, insights.FormatCurrency(budgets[id], user.Currency)})
				}
				return table(w, []string{"CATEGORY", "BUDGET"}, rows)
			})
		}),
	}
}
