package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ringlify/ringlify-cli/internal/models"
	"github.com/ringlify/ringlify-cli/internal/output"
	"github.com/ringlify/ringlify-cli/internal/portal"
)

// NewCallsCmd lists the signed-in business's call logs.
func NewCallsCmd() *cobra.Command {
	var (
		page, limit int
		status      string
		start, end  string
	)

	cmd := &cobra.Command{
		Use:   "calls",
		Short: "List your call logs",
		Long:  "List inbound calls and their booking outcome.\n\nStatuses: " + statusList() + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			startDate, endDate, err := dateRange(start, end)
			if err != nil {
				return err
			}

			result, err := app.Portal.ListCallLogs(cmd.Context(), portal.CallLogQuery{
				Page:      page,
				Limit:     limit,
				Status:    models.CallStatus(status),
				StartDate: startDate,
				EndDate:   endDate,
			})
			if err != nil {
				return err
			}

			return app.OK(result.Data,
				output.WithSummary(pageSummary("calls", len(result.Data), result.Pagination)),
				output.WithMeta("pagination", result.Pagination),
				output.WithBreadcrumbs(nextPage("ringlify calls", result.Pagination)...),
			)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (max 100)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&start, "start", "", "Earliest date")
	cmd.Flags().StringVar(&end, "end", "", "Latest date")
	_ = cmd.RegisterFlagCompletionFunc("status", completeStatus)

	return cmd
}

func statusList() string {
	names := make([]string, len(models.CallStatuses))
	for i, s := range models.CallStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func completeStatus(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(models.CallStatuses))
	for i, s := range models.CallStatuses {
		out[i] = string(s) + "\t" + s.Label()
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
