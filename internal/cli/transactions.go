package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"smartfinance/internal/core"
	"smartfinance/internal/insights"
	"smartfinance/internal/records"
	"smartfinance/internal/session"
	"smartfinance/internal/validation"
)

func newTxCommand(a *app) *cobra.Command {
	txCmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction", "transactions"},
		Short:   "Manage transactions",
	}
	txCmd.AddCommand(
		newTxAddCommand(a),
		newTxUpdateCommand(a),
		newTxDeleteCommand(a),
		newTxGetCommand(a),
		newTxListCommand(a),
	)
	return txCmd
}

func newTxAddCommand(a *app) *cobra.Command {
	var in records.NewTransaction
	var txType string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or an expense",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			in.Type = core.TransactionType(strings.ToLower(txType))
			if in.Date == "" {
				in.Date = e.today()
			}
			in.Description = strings.TrimSpace(in.Description)
			in.Amount = strings.TrimSpace(in.Amount)
			if res := validation.ValidateTransaction(in.Description, in.Amount, in.Date, in.Category, in.Type); !res.IsValid {
				return &session.FormError{Fields: res.Errors}
			}

			store, user, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			t, err := store.AddTransaction(ctx, in)
			if err != nil {
				return err
			}
			return a.out(cmd).result(t, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Added %s %s %s (%s)\n", t.Type, insights.FormatCurrency(t.Amount, user.Currency), t.Description, t.ID)
				return err
			})
		}),
	}

	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "description (required)")
	cmd.Flags().StringVarP(&in.Amount, "amount", "a", "", "amount, up to two decimals (required)")
	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "category id (required)")
	cmd.Flags().StringVar(&in.Date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&txType, "type", "t", string(core.Expense), "income or expense")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newTxUpdateCommand(a *app) *cobra.Command {
	var description, amount, category, date, txType, notes string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			var u records.TransactionUpdate
			fields := map[string]string{}
			flags := cmd.Flags()

			if flags.Changed("description") {
				if r := validation.Validate(description, validation.RuleDescription, true); !r.IsValid {
					fields["description"] = r.Message
				}
				u.Description = &description
			}
			if flags.Changed("amount") {
				d, err := core.ParseAmount(amount)
				if err != nil {
					fields["amount"] = validation.MessageInvalid
				}
				u.Amount = &d
			}
			if flags.Changed("category") {
				u.Category = &category
			}
			if flags.Changed("date") {
				if r := validation.Validate(date, validation.RuleDate, true); !r.IsValid {
					fields["date"] = r.Message
				}
				u.Date = &date
			}
			if flags.Changed("type") {
				t := core.TransactionType(strings.ToLower(txType))
				u.Type = &t
			}
			if flags.Changed("notes") {
				u.Notes = &notes
			}
			if len(fields) > 0 {
				return &session.FormError{Fields: fields}
			}

			store, user, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			t, err := store.UpdateTransaction(ctx, args[0], u)
			if err != nil {
				return err
			}
			return a.out(cmd).result(t, func(w io.Writer) error {
				return printTransactions(w, []core.Transaction{t}, user.Currency)
			})
		}),
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "new amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category id")
	cmd.Flags().StringVar(&date, "date", "", "new date as YYYY-MM-DD")
	cmd.Flags().StringVarP(&txType, "type", "t", "", "income or expense")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")

	return cmd
}

func newTxDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			store, _, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			t, err := store.DeleteTransaction(ctx, args[0])
			if err != nil {
				return err
			}
			return a.out(cmd).result(t, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted %s\n", t.ID)
				return err
			})
		}),
	}
}

func newTxGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			store, user, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			t, err := store.GetTransaction(args[0])
			if err != nil {
				return err
			}
			return a.out(cmd).result(t, func(w io.Writer) error {
				return printTransactions(w, []core.Transaction{t}, user.Currency)
			})
		}),
	}
}

func newTxListCommand(a *app) *cobra.Command {
	var f records.Filters
	var period, txType string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions, newest first unless sorted",
		Args:    cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			f.DateRange = core.Period(period)
			if txType != "" {
				f.Type = core.TransactionType(strings.ToLower(txType))
				if !f.Type.Valid() {
					return fmt.Errorf("%w: %q", core.ErrInvalidType, txType)
				}
			}

			store, user, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			txns := store.GetTransactions(ctx, f)
			return a.out(cmd).result(txns, func(w io.Writer) error {
				return printTransactions(w, txns, user.Currency)
			})
		}),
	}

	cmd.Flags().StringVar(&period, "period", "", "today, week, month, quarter or year (default all)")
	cmd.Flags().StringVarP(&f.Category, "category", "c", "", "category id")
	cmd.Flags().StringVarP(&txType, "type", "t", "", "income or expense")
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "case-insensitive pattern over description, notes and amount")
	cmd.Flags().StringVar(&f.SortBy, "sort-by", "", "date, amount, description or category")
	cmd.Flags().StringVar(&f.SortOrder, "sort-order", records.SortAsc, "asc or desc")
	cmd.Flags().IntVarP(&f.Limit, "limit", "n", 0, "maximum number of rows (0 for all)")

	return cmd
}

func printTransactions(w io.Writer, txns []core.Transaction, currency string) error {
	if len(txns) == 0 {
		_, err := fmt.Fprintln(w, "No transactions")
		return err
	}
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		amount := insights.FormatCurrency(t.Amount, currency)
		if t.Type == core.Expense {
			amount = "-" + amount
		}
		rows = append(rows, []string{t.ID, t.Date, string(t.Type), amount, t.Category, t.Description})
	}
	return table(w, []string{"ID", "DATE", "TYPE", "AMOUNT", "CATEGORY", "DESCRIPTION"}, rows)
}
