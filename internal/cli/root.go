package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// app carries the global flags and the env opener shared by every command.
type app struct {
	open    opener
	verbose bool
	asJSON  bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openEnv)
}

func newRootCommand(open opener) *cobra.Command {
	a := &app{open: open}

	rootCmd := &cobra.Command{
		Use:     "smartfinance",
		Short:   "Personal finance tracker for transactions, budgets and insights",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at the configured LOG_LEVEL instead of warnings only")
	rootCmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print results as JSON")

	rootCmd.AddCommand(
		newLoginCommand(a),
		newRegisterCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newThemeCommand(a),
		newGoalCommand(a),
		newTxCommand(a),
		newCategoryCommand(a),
		newBudgetCommand(a),
		newStatsCommand(a),
		newTrendCommand(a),
		newDashboardCommand(a),
		newInsightsCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newBackupsCommand(a),
		newValidateCommand(a),
		newPasswordCommand(a),
		newFeedCommand(a),
		newServeCommand(a),
	)
	return rootCmd
}

// runFunc is the body of a command that needs an env.
type runFunc func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error

// withEnv opens the env, runs fn and closes the env whatever fn returned.
// serve logs at the configured level; other commands only warn unless
// --verbose is set.
func (a *app) withEnv(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		minLevel := slog.LevelWarn
		if a.verbose || cmd.Name() == "serve" {
			minLevel = slog.LevelDebug
		}

		e, err := a.open(ctx, minLevel, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, e.close(ctx))
		}()
		return fn(ctx, cmd, args, e)
	}
}

// printer writes command results as text or JSON.
type printer struct {
	w      io.Writer
	asJSON bool
}

func (a *app) out(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), asJSON: a.asJSON}
}

// result prints v as JSON, or the text rendering when JSON was not asked for.
func (p printer) result(v any, text func(w io.Writer) error) error {
	if p.asJSON || text == nil {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(p.w)
}

// table renders rows under headers with aligned columns.
func table(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
