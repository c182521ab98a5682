package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luma/topicsender/internal/meta"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		info := meta.GetInfo()

		fmt.Fprintf(cmd.OutOrStdout(), "topicsender %s (%s, %s)\n", info.Version, info.Build, info.Branch)
		fmt.Fprintf(cmd.OutOrStdout(), "built %s with %s on %s\n", info.BuildTime, info.GoVersion, info.Platform)
	},
}
