package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"smartfinance/internal/core"
	"smartfinance/internal/insights"
	"smartfinance/internal/session"
)

func newLoginCommand(a *app) *cobra.Command {
	var req session.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and start a fresh profile",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			user, err := e.sessions.Login(ctx, req)
			if err != nil {
				return err
			}
			return a.out(cmd).result(user, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Welcome back, %s!\n", insights.DisplayName(user))
				return err
			})
		}),
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, at least 6 characters (required)")
	cmd.Flags().BoolVar(&req.Remember, "remember", false, "remember this login")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newRegisterCommand(a *app) *cobra.Command {
	var req session.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with the default categories",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			user, err := e.sessions.Register(ctx, req)
			if err != nil {
				return err
			}
			return a.out(cmd).result(user, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Account created for %s (%s)\n", user.Name, user.Currency)
				return err
			})
		}),
	}

	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name (required)")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name (required)")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (required)")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm-password", "", "password again (required)")
	cmd.Flags().StringVar(&req.Currency, "currency", "USD", "display currency code")
	cmd.Flags().BoolVar(&req.Terms, "accept-terms", false, "accept the terms and conditions")
	for _, name := range []string{"first-name", "last-name", "email", "password", "confirm-password"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; records stay stored",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			if err := e.sessions.Logout(ctx); err != nil {
				return err
			}
			return a.out(cmd).result(map[string]bool{"loggedIn": false}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Logged out")
				return err
			})
		}),
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			user, ok, err := e.sessions.Current(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errNoSession
			}
			return a.out(cmd).result(user, func(w io.Writer) error {
				goal := "not set"
				if user.SavingsGoal != nil {
					goal = insights.FormatCurrency(*user.SavingsGoal, user.Currency)
				}
				return table(w, []string{"ID", "NAME", "EMAIL", "CURRENCY", "SAVINGS GOAL"},
					[][]string{{user.ID, user.Name, user.Email, user.Currency, goal}})
			})
		}),
	}
}

func newThemeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [toggle]",
		Short:     "Show or toggle the light/dark theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"toggle"},
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			var theme string
			var err error
			if len(args) == 1 {
				theme, err = e.sessions.ToggleTheme(ctx)
			} else {
				theme, err = e.sessions.Theme(ctx)
			}
			if err != nil {
				return err
			}
			return a.out(cmd).result(map[string]string{"theme": theme}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, theme)
				return err
			})
		}),
	}
}

func newGoalCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "goal <amount>",
		Short: "Set the monthly savings goal",
		Args:  cobra.ExactArgs(1),
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			goal, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", core.ErrInvalidAmount, args[0])
			}
			user, err := e.sessions.SetSavingsGoal(ctx, goal)
			if err != nil {
				return err
			}
			return a.out(cmd).result(user, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Savings goal set to %s\n", insights.FormatCurrency(goal, user.Currency))
				return err
			})
		}),
	}
}
