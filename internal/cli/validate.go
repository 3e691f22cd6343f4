package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"smartfinance/internal/validation"
)

// errInvalidValue makes a failed check exit non-zero after the result is printed.
var errInvalidValue = errors.New("value is invalid")

func newValidateCommand(a *app) *cobra.Command {
	var required bool

	cmd := &cobra.Command{
		Use:   "validate <rule> <value>",
		Short: "Check a value against a validation rule",
		Long: "Check a value against one of the rules: description, amount, date, category, " +
			"email, password, name, duplicateWords, centsPresent or beverage.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, value := args[0], args[1]
			if !validation.KnownRule(rule) {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: unknown rule %q accepts every value\n", rule)
			}
			res := validation.Validate(value, rule, required)
			if err := a.out(cmd).result(res, func(w io.Writer) error {
				if res.IsValid {
					_, err := fmt.Fprintln(w, "valid")
					return err
				}
				_, err := fmt.Fprintf(w, "invalid: %s\n", res.Message)
				return err
			}); err != nil {
				return err
			}
			if !res.IsValid {
				return errInvalidValue
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&required, "required", false, "treat an empty value as invalid")
	return cmd
}

// passwordView mirrors the strength report of the API.
type passwordView struct {
	validation.PasswordStrength
	Match *validation.Result `json:"match,omitempty"`
}

func newPasswordCommand(a *app) *cobra.Command {
	var confirm string

	cmd := &cobra.Command{
		Use:   "password <password>",
		Short: "Score the strength of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := passwordView{PasswordStrength: validation.ValidatePassword(args[0])}
			if cmd.Flags().Changed("confirm") {
				m := validation.PasswordsMatch(args[0], confirm)
				view.Match = &m
			}
			return a.out(cmd).result(view, func(w io.Writer) error {
				if _, err := fmt.Fprintf(w, "%s (%d/6)", view.Strength, view.Score); err != nil {
					return err
				}
				if view.Message != "" {
					fmt.Fprintf(w, ": %s", view.Message)
				}
				fmt.Fprintln(w)
				if view.Match != nil && !view.Match.IsValid {
					_, err := fmt.Fprintln(w, view.Match.Message)
					return err
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&confirm, "confirm", "", "confirmation to compare against")
	return cmd
}
