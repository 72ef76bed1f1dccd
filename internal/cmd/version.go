package cmd

import (
	"fmt"

	"github.com/salqa/sal/cli/pkg/client"
	"github.com/salqa/sal/cli/pkg/config"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../internal/cmd.Version=...".
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Sal CLI v%s\n", Version)
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "  API:        %s\n", config.GetString("api.base_url"))
			fmt.Fprintf(cmd.OutOrStdout(), "  User-Agent: %s\n", client.UserAgent)
			fmt.Fprintf(cmd.OutOrStdout(), "  Config:     %s\n", config.GetConfigFilePath())
		}
	},
}
