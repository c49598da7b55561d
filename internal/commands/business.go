package commands

import (
	"github.com/spf13/cobra"

	"github.com/ringlify/ringlify-cli/internal/models"
	"github.com/ringlify/ringlify-cli/internal/output"
)

// NewBusinessCmd creates the business command group for the signed-in business.
func NewBusinessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "business",
		Short: "Show or update your business",
	}
	cmd.AddCommand(newBusinessShowCmd(), newBusinessUpdateCmd())
	return cmd
}

func newBusinessShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your business",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			b, err := app.Portal.Business(cmd.Context())
			if err != nil {
				return err
			}

			return app.OK(b,
				output.WithSummary(b.Name),
				output.WithBreadcrumbs(
					output.Breadcrumb{Action: "update", Cmd: "ringlify business update --name <name>", Description: "Change details"},
					output.Breadcrumb{Action: "kb", Cmd: "ringlify kb show", Description: "Knowledge base"},
				),
			)
		},
	}
}

// businessUpdateFlags registers the partial-update flags shared by the
// business and admin update commands.
type businessUpdateFlags struct {
	name, phone, timezone, description string
}

func (f *businessUpdateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Business name")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Phone number in E.164 form")
	cmd.Flags().StringVar(&f.timezone, "timezone", "", "IANA timezone, e.g. America/New_York")
	cmd.Flags().StringVar(&f.description, "description", "", "Short description")
}

func (f *businessUpdateFlags) update(cmd *cobra.Command) models.BusinessUpdate {
	return models.BusinessUpdate{
		Name:        optionalString(cmd, "name", f.name),
		PhoneNumber: optionalString(cmd, "phone", f.phone),
		Timezone:    optionalString(cmd, "timezone", f.timezone),
		Description: optionalString(cmd, "description", f.description),
	}
}

func newBusinessUpdateCmd() *cobra.Command {
	var flags businessUpdateFlags

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your business",
		Long:  "Update only the fields given as flags.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			b, err := app.Portal.UpdateBusiness(cmd.Context(), flags.update(cmd))
			if err != nil {
				return err
			}
			return app.OK(b, output.WithSummary("Updated "+b.Name))
		},
	}
	flags.register(cmd)

	return cmd
}
