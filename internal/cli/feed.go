package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"smartfinance/internal/amqp"
)

func newFeedCommand(a *app) *cobra.Command {
	var pattern string
	var mine bool

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Follow record changes published on the message broker",
		Long: "Print every change message matching the routing pattern as one JSON line " +
			"until interrupted. Routing keys are <event>.<user id>.",
		Args: cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			if e.publisher == nil {
				return errors.New("change feed is disabled: set AMQP_URL")
			}
			if mine {
				user, ok, err := e.sessions.Current(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return errNoSession
				}
				pattern = "*." + user.ID
			}

			ctx, stop := ShutdownContext(ctx)
			defer stop()

			out := cmd.OutOrStdout()
			err := e.publisher.Consume(ctx, pattern, func(msg *amqp.ChangeMessage) error {
				data, err := msg.ToJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}),
	}

	cmd.Flags().StringVar(&pattern, "pattern", "#", "topic pattern to bind, e.g. transaction-added.*")
	cmd.Flags().BoolVar(&mine, "mine", false, "only changes of the signed-in user")
	cmd.MarkFlagsMutuallyExclusive("pattern", "mine")

	return cmd
}
