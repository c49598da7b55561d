package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ringlify/ringlify-cli/internal/admin"
	"github.com/ringlify/ringlify-cli/internal/completion"
	"github.com/ringlify/ringlify-cli/internal/models"
	"github.com/ringlify/ringlify-cli/internal/output"
	"github.com/ringlify/ringlify-cli/internal/tui"
)

// NewAdminCmd creates the operator command group. Requests carry the
// operator key from --operator-key, RINGLIFY_ADMIN_API_KEY, or config.
func NewAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator commands across all businesses",
		Long: `Operator commands across all businesses.

Requests are authorized with the operator key (--operator-key,
RINGLIFY_ADMIN_API_KEY, or operator_key in config). Without a key they are
sent unauthenticated and the backend decides.`,
	}

	cmd.AddCommand(
		newAdminBusinessesCmd(),
		newAdminAppointmentsCmd(),
		newAdminCallsCmd(),
		newAdminOverviewCmd(),
	)

	return cmd
}

func newAdminBusinessesCmd() *cobra.Command {
	completer := completion.NewCompleter(nil, nil)

	cmd := &cobra.Command{
		Use:     "businesses",
		Aliases: []string{"business", "biz"},
		Short:   "Manage businesses",
	}

	cmd.AddCommand(
		newAdminBusinessListCmd(),
		newAdminBusinessShowCmd(completer),
		newAdminBusinessCreateCmd(),
		newAdminBusinessUpdateCmd(completer),
		newAdminBusinessDeleteCmd(completer),
		newAdminBusinessKBCmd(completer),
	)

	return cmd
}

func newAdminBusinessListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List businesses",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			list, err := app.Admin.ListBusinesses(cmd.Context())
			if err != nil {
				return err
			}

			// Opportunistically refresh the completion cache
			if err := completion.NewStore("").UpdateBusinesses(app.Config.BaseURL, list); err != nil {
				app.Logger.Debug("completion cache not updated", zap.Error(err))
			}

			return app.OK(list,
				output.WithSummary(fmt.Sprintf("%s businesses", output.FormatNumber(len(list)))),
				output.WithBreadcrumbs(output.Breadcrumb{
					Action:      "show",
					Cmd:         "ringlify admin businesses show <id>",
					Description: "Business details",
				}),
			)
		},
	}
}

func newAdminBusinessShowCmd(completer *completion.Completer) *cobra.Command {
	return &cobra.Command{
		Use:               "show <id>",
		Short:             "Show a business",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completer.BusinessCompletion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			b, err := app.Admin.GetBusiness(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			summary := b.Name
			if b.Count != nil {
				summary = fmt.Sprintf("%s: %s appointments, %s calls", b.Name,
					output.FormatNumber(b.Count.Appointments), output.FormatNumber(b.Count.CallLogs))
			}
			return app.OK(b,
				output.WithSummary(summary),
				output.WithBreadcrumbs(
					output.Breadcrumb{Action: "appointments", Cmd: "ringlify admin appointments --business " + b.ID, Description: "Appointments"},
					output.Breadcrumb{Action: "calls", Cmd: "ringlify admin calls --business " + b.ID, Description: "Call logs"},
				),
			)
		},
	}
}

func newAdminBusinessCreateCmd() *cobra.Command {
	var (
		in     models.BusinessInput
		kbFile string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a business",
		Example: `  ringlify admin businesses create --name "Corner Cafe" --phone +15550100 --timezone America/Chicago
  ringlify admin businesses create --name "Corner Cafe" --phone +15550100 --kb-file kb.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			if (in.Name == "" || in.PhoneNumber == "") && app.IsInteractive() {
				if err := tui.Business(&in); err != nil {
					return promptError(err)
				}
			}
			if kbFile != "" {
				doc, err := loadKnowledgeBase(cmd, kbFile)
				if err != nil {
					return err
				}
				in.KnowledgeBase = doc
			}

			b, err := app.Admin.CreateBusiness(cmd.Context(), in)
			if err != nil {
				return err
			}
			return app.OK(b, output.WithSummary("Created "+b.Name))
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Business name")
	cmd.Flags().StringVar(&in.PhoneNumber, "phone", "", "Phone number in E.164 form")
	cmd.Flags().StringVar(&in.Timezone, "timezone", "", "IANA timezone")
	cmd.Flags().StringVar(&in.Description, "description", "", "Short description")
	cmd.Flags().StringVar(&kbFile, "kb-file", "", "Initial knowledge base JSON file, or - for stdin")

	return cmd
}

func newAdminBusinessUpdateCmd(completer *completion.Completer) *cobra.Command {
	var flags businessUpdateFlags

	cmd := &cobra.Command{
		Use:               "update <id>",
		Short:             "Update a business",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completer.BusinessCompletion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			b, err := app.Admin.UpdateBusiness(cmd.Context(), args[0], flags.update(cmd))
			if err != nil {
				return err
			}
			return app.OK(b, output.WithSummary("Updated "+b.Name))
		},
	}
	flags.register(cmd)

	return cmd
}

func newAdminBusinessDeleteCmd(completer *completion.Completer) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:               "delete <id>",
		Short:             "Delete a business",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completer.BusinessCompletion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			id := args[0]

			if !force {
				if !app.IsInteractive() {
					return output.ErrUsageHint("Refusing to delete without confirmation", "Pass --force")
				}
				ok, err := tui.ConfirmDangerous(fmt.Sprintf("Delete business %s?", id))
				if err != nil {
					return promptError(err)
				}
				if !ok {
					return output.ErrUsage("Canceled")
				}
			}

			if err := app.Admin.DeleteBusiness(cmd.Context(), id); err != nil {
				return err
			}
			return app.OK(map[string]string{"id": id, "status": "deleted"},
				output.WithSummary("Deleted business "+id))
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation")

	return cmd
}

func newAdminBusinessKBCmd(completer *completion.Completer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Show or replace a business's knowledge base",
	}

	var query string
	show := &cobra.Command{
		Use:               "show <id>",
		Short:             "Show a knowledge base",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completer.BusinessCompletion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			b, err := app.Admin.GetBusiness(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return showKnowledgeBase(cmd, b.KnowledgeBase, query)
		},
	}
	show.Flags().StringVar(&query, "query", "", "jq expression to apply")

	var file string
	set := &cobra.Command{
		Use:               "set <id>",
		Short:             "Replace a knowledge base",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completer.BusinessCompletion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			doc, err := loadKnowledgeBase(cmd, file)
			if err != nil {
				return err
			}
			b, err := app.Admin.UpdateKnowledgeBase(cmd.Context(), args[0], doc)
			if err != nil {
				return err
			}
			return app.OK(b.KnowledgeBase, output.WithSummary("Knowledge base updated for "+b.Name))
		},
	}
	set.Flags().StringVarP(&file, "file", "f", "", "JSON file, or - for stdin")

	cmd.AddCommand(show, set)
	return cmd
}

func newAdminAppointmentsCmd() *cobra.Command {
	var (
		f          admin.AppointmentFilter
		start, end string
	)

	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appts"},
		Short:   "List appointments across businesses",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			if f.StartDate, f.EndDate, err = dateRange(start, end); err != nil {
				return err
			}

			result, err := app.Admin.ListAppointments(cmd.Context(), f)
			if err != nil {
				return err
			}

			return app.OK(result.Data,
				output.WithSummary(pageSummary("appointments", len(result.Data), result.Pagination)),
				output.WithMeta("pagination", result.Pagination),
				output.WithBreadcrumbs(nextPage("ringlify admin appointments", result.Pagination)...),
			)
		},
	}

	cmd.Flags().StringVar(&f.BusinessID, "business", "", "Business ID")
	_ = cmd.RegisterFlagCompletionFunc("business", completion.NewCompleter(nil, nil).BusinessFlagCompletion())
	cmd.Flags().IntVar(&f.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "Page size (max 100)")
	cmd.Flags().StringVar(&start, "start", "", "Earliest date")
	cmd.Flags().StringVar(&end, "end", "", "Latest date")

	return cmd
}

func newAdminCallsCmd() *cobra.Command {
	var (
		f          admin.CallLogFilter
		status     string
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "calls",
		Short: "List call logs across businesses",
		Long:  "List call logs across businesses.\n\nStatuses: " + statusList() + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			if f.StartDate, f.EndDate, err = dateRange(start, end); err != nil {
				return err
			}
			f.Status = models.CallStatus(status)

			result, err := app.Admin.ListCallLogs(cmd.Context(), f)
			if err != nil {
				return err
			}

			return app.OK(result.Data,
				output.WithSummary(pageSummary("calls", len(result.Data), result.Pagination)),
				output.WithMeta("pagination", result.Pagination),
				output.WithBreadcrumbs(nextPage("ringlify admin calls", result.Pagination)...),
			)
		},
	}

	cmd.Flags().StringVar(&f.BusinessID, "business", "", "Business ID")
	_ = cmd.RegisterFlagCompletionFunc("business", completion.NewCompleter(nil, nil).BusinessFlagCompletion())
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().IntVar(&f.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "Page size (max 100)")
	cmd.Flags().StringVar(&start, "start", "", "Earliest date")
	cmd.Flags().StringVar(&end, "end", "", "Latest date")
	_ = cmd.RegisterFlagCompletionFunc("status", completeStatus)

	return cmd
}

func newAdminOverviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Totals across all businesses",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			ov, err := app.Admin.Overview(cmd.Context())
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("%s businesses, %s appointments, %s calls",
				output.FormatNumber(ov.Businesses),
				output.FormatNumber(ov.Appointments),
				output.FormatNumber(ov.CallLogs))
			return app.OK(ov, output.WithSummary(summary))
		},
	}
}
