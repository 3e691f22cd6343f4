package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"smartfinance/internal/records"
	"smartfinance/internal/sheets"
)

var errSheetsDisabled = errors.New("google sheets is not configured: set GOOGLE_SPREADSHEET_ID and service account credentials")

// formatFor picks the document format from the flag, then from the file
// extension, defaulting to JSON.
func formatFor(flag, path string) (string, error) {
	f := strings.ToLower(flag)
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch f {
	case "", records.FormatJSON:
		return records.FormatJSON, nil
	case records.FormatYAML, "yml":
		return records.FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q: use json or yaml", f)
	}
}

func newExportCommand(a *app) *cobra.Command {
	var format, output string
	var toSheets bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every record as a JSON or YAML document, or to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			store, _, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			snap := store.ExportData()

			if toSheets {
				if e.sheets == nil {
					return errSheetsDisabled
				}
				res, err := sheets.NewExporter(e.sheets, e.cfg.GoogleSheetName).Export(ctx, snap)
				if err != nil {
					return fmt.Errorf("export to sheets: %w", err)
				}
				return a.out(cmd).result(res, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Wrote %s and %s\n", res.TransactionsRef, res.CategoriesRef)
					return err
				})
			}

			f, err := formatFor(format, output)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return snap.Encode(cmd.OutOrStdout(), f)
			}
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := snap.Encode(file, f); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}
			e.logger.InfoContext(ctx, "Exported records", "file", output, "transactions", len(snap.Transactions))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s\n", len(snap.Transactions), output)
			return err
		}),
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from the output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "write to the configured spreadsheet instead")
	cmd.MarkFlagsMutuallyExclusive("sheets", "output")

	return cmd
}

func newImportCommand(a *app) *cobra.Command {
	var format string
	var fromSheets bool
	var year int

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace every record with an import document, backing up the current ones first",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			if fromSheets == (len(args) == 1) {
				return errors.New("pass either a file or --sheets")
			}
			store, _, err := e.openStore(ctx)
			if err != nil {
				return err
			}

			var payload records.ImportPayload
			if fromSheets {
				if e.sheets == nil {
					return errSheetsDisabled
				}
				now := store.Now()
				if year == 0 {
					year = now.Year()
				}
				payload, err = sheets.ReadPayload(ctx, e.sheets, e.cfg.GoogleSheetName, year, now)
			} else {
				payload, err = readImportFile(cmd, args[0], format)
			}
			if err != nil {
				return err
			}

			stats, err := store.ImportData(ctx, payload)
			if err != nil {
				return err
			}
			return a.out(cmd).result(stats, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Imported %d transactions, %d categories and %d budgets (backup %s)\n",
					stats.Transactions, stats.Categories, stats.Budgets, stats.BackupKey)
				return err
			})
		}),
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from the file extension, else json)")
	cmd.Flags().BoolVar(&fromSheets, "sheets", false, "read from the configured spreadsheet")
	cmd.Flags().IntVar(&year, "year", 0, "spreadsheet year to read (default current year)")

	return cmd
}

func readImportFile(cmd *cobra.Command, path, format string) (records.ImportPayload, error) {
	f, err := formatFor(format, path)
	if err != nil {
		return records.ImportPayload{}, err
	}
	if path == "-" {
		return records.DecodeImport(cmd.InOrStdin(), f)
	}
	file, err := os.Open(path)
	if err != nil {
		return records.ImportPayload{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return records.DecodeImport(file, f)
}

func newBackupsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List the snapshots taken before each import",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			store, _, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			backups, err := store.ListBackups(ctx)
			if err != nil {
				return err
			}
			return a.out(cmd).result(backups, func(w io.Writer) error {
				if len(backups) == 0 {
					_, err := fmt.Fprintln(w, "No backups")
					return err
				}
				rows := make([][]string, 0, len(backups))
				for _, b := range backups {
					rows = append(rows, []string{b.Key, b.CreatedAt.In(store.Location()).Format("2006-01-02 15:04:05")})
				}
				return table(w, []string{"KEY", "CREATED"}, rows)
			})
		}),
	}
}
