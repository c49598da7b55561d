package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ringlify/ringlify-cli/internal/output"
)

// NewStatsCmd creates the stats command group.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Activity counts for your business",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Calls and appointments today (UTC)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			stats, err := app.Portal.TodayStats(cmd.Context())
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("%s calls, %s appointments today",
				output.FormatNumber(stats.Calls), output.FormatNumber(stats.Appointments))
			return app.OK(stats,
				output.WithSummary(summary),
				output.WithBreadcrumbs(
					output.Breadcrumb{Action: "calls", Cmd: "ringlify calls --start today", Description: "Today's calls"},
					output.Breadcrumb{Action: "appointments", Cmd: "ringlify appointments --start today --end tomorrow", Description: "Today's appointments"},
				),
			)
		},
	})
	return cmd
}
