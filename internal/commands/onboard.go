package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ringlify/ringlify-cli/internal/models"
	"github.com/ringlify/ringlify-cli/internal/output"
	"github.com/ringlify/ringlify-cli/internal/portal"
	"github.com/ringlify/ringlify-cli/internal/tui"
)

// NewOnboardCmd creates the onboarding wizard for a newly signed-up business.
func NewOnboardCmd() *cobra.Command {
	var (
		info  portal.BusinessInfo
		hours portal.Hours
		know  portal.Knowledge
	)

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Set up your business step by step",
		Long: `Set up your business in three steps: business info, hours and timezone,
then the knowledge base answers your call assistant uses.

On a terminal each step is a prompt prefilled from your business and the
flags. Otherwise the flags and current values are saved as given. Each step
is saved before the next begins; the knowledge base step is skipped when
every answer is empty.`,
		Example: `  ringlify onboard
  ringlify onboard --name "Corner Cafe" --phone +15551234567 --timezone Europe/Paris \
    --open 08:00 --close 18:00 --services "Espresso, pastries" --walk-ins "Always"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			current, err := app.Portal.Business(ctx)
			if err != nil {
				return err
			}
			prefillOnboarding(cmd, current, &info, &hours)
			interactive := app.IsInteractive()

			if interactive {
				if err := tui.OnboardingInfo(&info); err != nil {
					return promptError(err)
				}
			}
			if _, err := app.Portal.SaveBusinessInfo(ctx, info); err != nil {
				return err
			}
			app.Logger.Debug("onboarding step saved", zap.String("step", "info"))

			if interactive {
				if err := tui.OnboardingHours(&hours); err != nil {
					return promptError(err)
				}
			}
			b, err := app.Portal.SaveHours(ctx, hours)
			if err != nil {
				return err
			}
			app.Logger.Debug("onboarding step saved", zap.String("step", "hours"))

			if interactive {
				if err := tui.OnboardingKnowledge(&know); err != nil {
					return promptError(err)
				}
			}
			if !know.Empty() {
				if b, err = app.Portal.SaveKnowledge(ctx, know); err != nil {
					return err
				}
				app.Logger.Debug("onboarding step saved", zap.String("step", "knowledge"))
			}

			return app.OK(b,
				output.WithSummary("You're all set! "+b.Name+" is ready to take calls"),
				output.WithBreadcrumbs(
					output.Breadcrumb{Action: "stats", Cmd: "ringlify stats today", Description: "Today's activity"},
					output.Breadcrumb{Action: "kb", Cmd: "ringlify kb show", Description: "Review the knowledge base"},
				),
			)
		},
	}

	cmd.Flags().StringVar(&info.Name, "name", "", "Business name")
	cmd.Flags().StringVar(&info.PhoneNumber, "phone", "", "Phone number in E.164 form")
	cmd.Flags().StringVar(&info.Description, "description", "", "Short description")
	cmd.Flags().StringVar(&hours.Timezone, "timezone", "", "IANA timezone (default: current, else "+portal.DefaultTimezone+")")
	cmd.Flags().StringVar(&hours.Open, "open", portal.DefaultOpen, "Opening time, HH:MM")
	cmd.Flags().StringVar(&hours.Close, "close", portal.DefaultClose, "Closing time, HH:MM")
	cmd.Flags().StringVar(&know.Services, "services", "", "Services you offer")
	cmd.Flags().StringVar(&know.WalkIns, "walk-ins", "", "Walk-in policy")
	cmd.Flags().StringVar(&know.Policies, "policies", "", "Policies customers should know")
	cmd.Flags().StringVar(&know.FAQ, "faq", "", "Common questions and answers")
	_ = cmd.RegisterFlagCompletionFunc("timezone", cobra.FixedCompletions(portal.Timezones, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// prefillOnboarding fills every step field whose flag was not given from
// the stored business.
func prefillOnboarding(cmd *cobra.Command, b *models.Business, info *portal.BusinessInfo, hours *portal.Hours) {
	set := func(flag string, dst *string, v string) {
		if !cmd.Flags().Changed(flag) && v != "" {
			*dst = v
		}
	}
	set("name", &info.Name, b.Name)
	set("phone", &info.PhoneNumber, b.PhoneNumber)
	set("description", &info.Description, b.Description)
	set("timezone", &hours.Timezone, b.Timezone)
	if hours.Timezone == "" {
		hours.Timezone = portal.DefaultTimezone
	}

	// Existing hours are stored per day; the wizard edits a single window.
	week, _ := b.KnowledgeBase["hours"].(map[string]any)
	if day, ok := week[portal.Weekdays[0]].(map[string]any); ok {
		open, _ := day["open"].(string)
		closing, _ := day["close"].(string)
		set("open", &hours.Open, open)
		set("close", &hours.Close, closing)
	}
}
