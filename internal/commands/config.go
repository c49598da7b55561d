package commands

import (
	"github.com/spf13/cobra"

	"github.com/ringlify/ringlify-cli/internal/output"
)

// NewConfigCmd creates the config command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show configuration",
		Long: `Show the effective configuration.

Configuration is loaded from multiple sources with the following precedence:
  flags > env > global > system > defaults

Config locations:
  - System: /etc/ringlify/config.yaml
  - Global: ~/.config/ringlify/config.yaml

Environment:
  RINGLIFY_BACKEND_URL, RINGLIFY_ADMIN_API_KEY, RINGLIFY_TIMEOUT,
  RINGLIFY_FORMAT, RINGLIFY_LOG_LEVEL, RINGLIFY_STATS, RINGLIFY_SESSION_DIR`,
		RunE: runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  "Display the current effective configuration with source information.",
		RunE:  runConfigShow,
	})

	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}
	return app.OK(app.Config.Entries(), output.WithSummary("Effective configuration"))
}
