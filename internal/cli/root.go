// Package cli wires configuration, credentials and the Pub/Sub client into
// the pubsub-client command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dipjyotimetia/pubsub-client/internal/auth"
	"github.com/dipjyotimetia/pubsub-client/internal/config"
	"github.com/dipjyotimetia/pubsub-client/internal/pubsub"
	"github.com/dipjyotimetia/pubsub-client/pkg/logger"
)

// emulatorToken is sent to emulators, which accept any bearer token
const emulatorToken = "emulator"

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pubsub-client",
		Short:         "Publish to and pull from Google Cloud Pub/Sub over REST",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newPullCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// loadConfig reads the environment and builds a logger writing to w
func loadConfig(w io.Writer) (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, logger.NewWithWriter(w, logger.ParseLevel(cfg.LogLevel)), nil
}

func newClient(cfg *config.Config, log *logger.Logger) *pubsub.Client {
	return pubsub.NewHTTPClient(cfg.Endpoint(), cfg.MaxMessages, cfg.Timeout, log)
}

// tokenProvider picks credentials in order: explicit access token,
// credentials file, emulator, application default credentials
func tokenProvider(ctx context.Context, cfg *config.Config) (pubsub.TokenProvider, error) {
	switch {
	case cfg.AccessToken != "":
		return auth.Static(cfg.AccessToken), nil
	case cfg.CredentialsFile != "":
		return auth.FromCredentialsFile(ctx, cfg.CredentialsFile)
	case cfg.IsEmulator():
		return auth.Static(emulatorToken), nil
	default:
		return auth.FromDefaultCredentials(ctx)
	}
}
