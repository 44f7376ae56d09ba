package cli

import (
	"github.com/spf13/cobra"

	"github.com/dipjyotimetia/pubsub-client/internal/emulator"
	"github.com/dipjyotimetia/pubsub-client/internal/server"
)

type serveOptions struct {
	Port string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local in-memory Pub/Sub REST emulator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			port := cfg.EmulatorPort
			if opts.Port != "" {
				port = opts.Port
			}

			emu := emulator.New(log)
			defer emu.Close()

			switch {
			case len(cfg.SubscriptionIDs) > 0:
				if err := emu.CreateTopicsAndSubscriptions(cfg.ProjectID, cfg.TopicIDs, cfg.SubscriptionIDs); err != nil {
					return err
				}
			default:
				for _, topic := range cfg.TopicIDs {
					if _, err := emu.CreateTopic(cfg.ProjectID, topic); err != nil {
						log.Warn("Failed to create topic %s: %v", topic, err)
					}
				}
			}

			srv := server.New(&server.Config{
				Port:     port,
				Emulator: emu,
				Logger:   log,
			})
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", "", "port to listen on (defaults to PUBSUB_PORT)")

	return cmd
}
