package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/topicsender/client"
	"github.com/luma/topicsender/cmd/gen"
	"github.com/luma/topicsender/internal/env"
	"github.com/luma/topicsender/transport"
)

var RootCmd = &cobra.Command{
	Use:   "topicsender",
	Short: "Send Topic protocol queries to world servers",
	Long: `Send Topic protocol queries to world servers, either one at a time
or through an HTTP gateway.

Timeouts and logging are configured with TOPIC_* environment variables,
optionally loaded from .env.local.`,
	SilenceUsage: true,
}

var (
	// Per phase timeout overrides, zero keeps the configured value
	timeouts transport.Timeouts
)

func init() {
	flags := RootCmd.PersistentFlags()

	flags.DurationVar(&timeouts.Connect, "connect-timeout", 0, "Override TOPIC_CONNECT_TIMEOUT")
	flags.DurationVar(&timeouts.Send, "send-timeout", 0, "Override TOPIC_SEND_TIMEOUT")
	flags.DurationVar(&timeouts.Receive, "receive-timeout", 0, "Override TOPIC_RECEIVE_TIMEOUT")
	flags.DurationVar(&timeouts.Disconnect, "disconnect-timeout", 0, "Override TOPIC_DISCONNECT_TIMEOUT")

	RootCmd.AddCommand(SendCmd)
	RootCmd.AddCommand(ServeCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger and topic client.
func setup(ctx context.Context) (*env.Config, *zap.Logger, *client.Client, error) {
	conf, err := env.LoadConfig(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := env.MakeLogger(conf.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	c := client.New(client.Options{
		Timeouts: mergeTimeouts(conf.Timeouts(), timeouts),
		Trace:    conf.Trace,
		Log:      log.Named("client"),
	})

	return conf, log, c, nil
}

func mergeTimeouts(base, override transport.Timeouts) transport.Timeouts {
	if override.Connect > 0 {
		base.Connect = override.Connect
	}
	if override.Send > 0 {
		base.Send = override.Send
	}
	if override.Receive > 0 {
		base.Receive = override.Receive
	}
	if override.Disconnect > 0 {
		base.Disconnect = override.Disconnect
	}

	return base
}
