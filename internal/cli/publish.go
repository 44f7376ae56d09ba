package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

type publishOptions struct {
	Topics     []string
	Attributes map[string]string
}

func newPublishCmd() *cobra.Command {
	var opts publishOptions

	cmd := &cobra.Command{
		Use:   "publish [message]",
		Short: "Publish a message to each configured topic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			topics := cfg.TopicIDs
			if len(opts.Topics) > 0 {
				topics = opts.Topics
			}
			if len(topics) == 0 {
				return errors.New("no topics: set PUBSUB_TOPIC or pass --topic")
			}

			message := cfg.MessageToPublish
			if len(args) == 1 {
				message = args[0]
			}

			tokens, err := tokenProvider(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			token, err := tokens.CurrentToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to obtain access token: %w", err)
			}

			client := newClient(cfg, log)
			ids, err := client.PublishToTopics(cmd.Context(), token, cfg.ProjectID, topics, []byte(message), opts.Attributes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, topic := range topics {
				if id, ok := ids[topic]; ok {
					fmt.Fprintf(out, "Published message with ID: %s to %s\n", id, topic)
				}
			}
			if len(ids) < len(topics) {
				failed := slices.DeleteFunc(slices.Clone(topics), func(t string) bool {
					_, ok := ids[t]
					return ok
				})
				return fmt.Errorf("publish failed for topics: %v", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&opts.Topics, "topic", nil, "topic to publish to (repeatable, defaults to PUBSUB_TOPIC)")
	cmd.Flags().StringToStringVar(&opts.Attributes, "attr", nil, "message attribute as key=value (repeatable)")

	return cmd
}
