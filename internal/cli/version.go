package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamtechie/zenji/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "zenji "+version.String())

		return err //nolint:wrapcheck // stdout write failure
	},
}
