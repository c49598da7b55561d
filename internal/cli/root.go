// Package cli assembles the ringlify command tree.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ringlify/ringlify-cli/internal/appctx"
	"github.com/ringlify/ringlify-cli/internal/commands"
	"github.com/ringlify/ringlify-cli/internal/config"
	"github.com/ringlify/ringlify-cli/internal/output"
	"github.com/ringlify/ringlify-cli/internal/version"
)

// NewRootCmd creates the root cobra command with every subcommand attached.
func NewRootCmd(opts ...appctx.Option) *cobra.Command {
	var flags appctx.GlobalFlags

	cmd := &cobra.Command{
		Use:   "ringlify",
		Short: "Command-line interface for Ringlify",
		Long: `ringlify manages a Ringlify business from the terminal: sign in, review
calls and appointments, and maintain the knowledge base your call assistant
answers from. Operators manage every business under "ringlify admin".`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip setup for help, version and completion
			if skipSetup(cmd) {
				return nil
			}

			cfg, err := config.Load(flags.Overrides())
			if err != nil {
				return output.ErrUsage(err.Error())
			}

			app, err := appctx.NewApp(cfg, flags, opts...)
			if err != nil {
				return err
			}

			cmd.SetContext(appctx.WithApp(cmd.Context(), app))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app := appctx.FromContext(cmd.Context()); app != nil {
				app.Close()
			}
		},
	}

	// Allow flags anywhere in the command line
	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)

	bindGlobalFlags(cmd.PersistentFlags(), &flags)

	cmd.AddCommand(
		commands.NewAuthCmd(),
		commands.NewBusinessCmd(),
		commands.NewOnboardCmd(),
		commands.NewKBCmd(),
		commands.NewAppointmentsCmd(),
		commands.NewCallsCmd(),
		commands.NewStatsCmd(),
		commands.NewAdminCmd(),
		commands.NewConfigCmd(),
		commands.NewVersionCmd(),
	)

	return cmd
}

// bindGlobalFlags registers the flags every command accepts.
func bindGlobalFlags(fs *pflag.FlagSet, flags *appctx.GlobalFlags) {
	// Output format flags
	fs.BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	fs.BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")
	fs.BoolVar(&flags.Styled, "styled", false, "Force styled output (ANSI colors)")
	fs.BoolVar(&flags.IDsOnly, "ids-only", false, "Output only IDs")
	fs.BoolVar(&flags.Count, "count", false, "Output only count")

	// Backend flags
	fs.StringVar(&flags.BaseURL, "backend", "", "Backend URL (e.g., localhost:3000, api.example.com)")
	fs.StringVar(&flags.OperatorKey, "operator-key", "", "Operator API key for admin commands")
	fs.StringVar(&flags.Timeout, "timeout", "", "Per-request timeout, e.g. 30s (default: none)")

	// Behavior flags
	fs.CountVarP(&flags.Verbose, "verbose", "v", "Verbose output (-v for failed requests, -vv for all requests)")
	fs.BoolVar(&flags.Stats, "stats", false, "Show session statistics")
	fs.BoolVar(&flags.NoPersist, "no-session-persist", false, "Don't read or write the stored session")
}

func skipSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}

// Execute runs the root command and exits with the mapped exit code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, NewRootCmd(), os.Args[1:])
	stop()
	os.Exit(code)
}

// Run executes cmd with args and returns the process exit code.
func Run(ctx context.Context, cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)

	// Use ExecuteC to get the executed command (for correct context access)
	executedCmd, err := cmd.ExecuteContextC(ctx)
	if err == nil {
		return output.ExitOK
	}

	err = transformCobraError(err)
	apiErr := output.AsError(err)

	if app := appctx.FromContext(executedCmd.Context()); app != nil {
		_ = app.Err(err)
		return apiErr.ExitCode()
	}

	// Fallback: output error directly (app not available, e.g., during setup)
	writer := output.New(output.Options{
		Format: fallbackFormat(cmd),
		Writer: cmd.OutOrStdout(),
	})
	_ = writer.Err(err)
	return apiErr.ExitCode()
}

// fallbackFormat reads the output flags straight from the command line.
func fallbackFormat(cmd *cobra.Command) output.Format {
	pf := cmd.PersistentFlags()
	quiet, _ := pf.GetBool("quiet")
	idsOnly, _ := pf.GetBool("ids-only")
	count, _ := pf.GetBool("count")
	styled, _ := pf.GetBool("styled")
	jsonFlag, _ := pf.GetBool("json")

	switch {
	case quiet:
		return output.FormatQuiet
	case idsOnly:
		return output.FormatIDs
	case count:
		return output.FormatCount
	case styled:
		return output.FormatStyled
	case jsonFlag:
		return output.FormatJSON
	}
	return output.FormatAuto
}

var (
	shorthandPattern = regexp.MustCompile(`unknown shorthand flag: '.' in (-\w)`)
	requiredPattern  = regexp.MustCompile(`required flag\(s\) (.+) not set`)
)

// transformCobraError rewrites cobra's parse errors as usage errors with
// consistent wording.
func transformCobraError(err error) error {
	var structured *output.Error
	if errors.As(err, &structured) {
		return err
	}
	msg := err.Error()

	// "flag needs an argument: --FLAG" → "--FLAG requires a value"
	if flag, ok := strings.CutPrefix(msg, "flag needs an argument: "); ok {
		return output.ErrUsage(flag + " requires a value")
	}

	// "unknown flag: --FLAG" → "Unknown option: --FLAG"
	if flag, ok := strings.CutPrefix(msg, "unknown flag: "); ok {
		return output.ErrUsage("Unknown option: " + flag)
	}

	if m := shorthandPattern.FindStringSubmatch(msg); len(m) > 1 {
		return output.ErrUsage("Unknown option: " + m[1])
	}

	if m := requiredPattern.FindStringSubmatch(msg); len(m) > 1 {
		names := strings.Split(m[1], ", ")
		for i, name := range names {
			names[i] = strings.Trim(name, `"`)
		}
		return output.ErrUsage("Missing required flag: --" + strings.Join(names, ", --"))
	}

	if strings.HasPrefix(msg, "unknown command") ||
		strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "arg(s), received") {
		return output.ErrUsage(msg)
	}

	return err
}
