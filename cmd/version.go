package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cloudposse/specls/pkg/version"
)

// versionCmd prints the version of specls.
var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Display the version of specls you are running",
	Example: "specls version",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "specls %s %s/%s\n", version.Version, runtime.GOOS, runtime.GOARCH)
		return err
	},
}
