package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dipjyotimetia/pubsub-client/internal/pubsub"
)

type pullOptions struct {
	Subscriptions []string
}

func newPullCmd() *cobra.Command {
	var opts pullOptions

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull available messages from each configured subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			subscriptions := cfg.SubscriptionIDs
			if len(opts.Subscriptions) > 0 {
				subscriptions = opts.Subscriptions
			}
			if len(subscriptions) == 0 {
				return errors.New("no subscriptions: set PUBSUB_SUBSCRIPTION or pass --subscription")
			}

			tokens, err := tokenProvider(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			client := newClient(cfg, log)

			var errs []error
			out := cmd.OutOrStdout()
			for _, sub := range subscriptions {
				session := pubsub.NewSession(client, tokens, pubsub.TopicRef{
					ProjectID:      cfg.ProjectID,
					SubscriptionID: sub,
				})

				result, err := session.Pull(cmd.Context())
				if err != nil {
					errs = append(errs, err)
					continue
				}

				for _, msg := range result.Messages {
					fmt.Fprintf(out, "Received message %s from %s: %s\n", msg.ServerMessageID, sub, msg.RawPayload)
				}
				if len(result.Messages) == 0 {
					fmt.Fprintf(out, "No messages available on %s\n", sub)
				}
				if result.Skipped > 0 {
					fmt.Fprintf(out, "Skipped %d incomplete messages on %s\n", result.Skipped, sub)
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Subscriptions, "subscription", nil, "subscription to pull from (repeatable, defaults to PUBSUB_SUBSCRIPTION)")

	return cmd
}
