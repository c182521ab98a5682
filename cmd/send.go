package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luma/topicsender/client"
)

var (
	// The world server to query
	sendHost string

	sendPort uint16

	// Percent-encode the query before sending it
	sanitize bool
)

func init() {
	flags := SendCmd.Flags()

	flags.StringVarP(&sendHost, "host", "a", "127.0.0.1", "The world server host name or IPv4 address")
	flags.Uint16VarP(&sendPort, "port", "p", 0, "The world server port")
	flags.BoolVar(&sanitize, "sanitize", false, "Percent-encode the query before sending it")

	if err := SendCmd.MarkFlagRequired("port"); err != nil {
		panic(err)
	}
}

var SendCmd = &cobra.Command{
	Use:   "send QUERY",
	Short: "Send a single topic and print the response as JSON",
	Long: `Send a single topic and print the response as JSON

Usage
	topicsender send --host world.example --port 26200 status

`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		_, log, c, err := setup(ctx)
		if err != nil {
			return err
		}
		defer log.Sync() // nolint:errcheck

		query := args[0]
		if sanitize {
			query = client.Sanitize(query)
		}

		resp, err := c.SendTopic(ctx, sendHost, query, sendPort)
		if err != nil {
			return err
		}

		body, err := resp.MarshalJSON()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	},
}
