package commands

import (
	"github.com/spf13/cobra"

	"github.com/ringlify/ringlify-cli/internal/output"
	"github.com/ringlify/ringlify-cli/internal/portal"
)

// NewAppointmentsCmd lists the signed-in business's appointments.
func NewAppointmentsCmd() *cobra.Command {
	var (
		page, limit int
		start, end  string
		name        string
	)

	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appts"},
		Short:   "List your appointments",
		Long: `List appointments booked for your business.

Dates accept YYYY-MM-DD or phrases such as today, yesterday, monday,
"last week" or "7 days ago". --name filters the fetched page by customer
name, ignoring case.`,
		Example: `  ringlify appointments --start today --end tomorrow
  ringlify appointments --name ann --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			startDate, endDate, err := dateRange(start, end)
			if err != nil {
				return err
			}

			result, err := app.Portal.ListAppointments(cmd.Context(), portal.AppointmentQuery{
				Page:      page,
				Limit:     limit,
				StartDate: startDate,
				EndDate:   endDate,
				Name:      name,
			})
			if err != nil {
				return err
			}

			return app.OK(result.Data,
				output.WithSummary(pageSummary("appointments", len(result.Data), result.Pagination)),
				output.WithMeta("pagination", result.Pagination),
				output.WithBreadcrumbs(nextPage("ringlify appointments", result.Pagination)...),
			)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (max 100)")
	cmd.Flags().StringVar(&start, "start", "", "Earliest date")
	cmd.Flags().StringVar(&end, "end", "", "Latest date")
	cmd.Flags().StringVar(&name, "name", "", "Customer name contains")

	return cmd
}
