package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ringlify/ringlify-cli/internal/version"
)

// NewVersionCmd prints build information. It runs without loading config.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Full())
			return err
		},
	}
}
