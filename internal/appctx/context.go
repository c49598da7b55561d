// Package appctx provides application context helpers.
package appctx

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ringlify/ringlify-cli/internal/admin"
	"github.com/ringlify/ringlify-cli/internal/api"
	"github.com/ringlify/ringlify-cli/internal/config"
	"github.com/ringlify/ringlify-cli/internal/logging"
	"github.com/ringlify/ringlify-cli/internal/observability"
	"github.com/ringlify/ringlify-cli/internal/output"
	"github.com/ringlify/ringlify-cli/internal/portal"
	"github.com/ringlify/ringlify-cli/internal/session"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Config *config.Config
	Output *output.Writer
	Logger *zap.Logger

	// Session and backend access
	Session *session.Accessor
	Events  *api.Events
	Client  *api.Client
	Admin   *admin.Service
	Portal  *portal.Service

	// Observability
	Collector *observability.SessionCollector
	Hooks     *observability.CLIHooks

	// Flags holds the global flag values
	Flags GlobalFlags

	stdout      io.Writer
	stderr      io.Writer
	invalidated atomic.Bool
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	// Output format flags
	JSON    bool
	Quiet   bool
	Styled  bool // Force ANSI styled output (even when piped)
	IDsOnly bool
	Count   bool

	// Backend flags
	BaseURL     string
	OperatorKey string
	Timeout     string

	// Behavior flags
	Verbose   int // 0=off, 1=failed requests, 2=every request (-v -v or -vv)
	Stats     bool
	NoPersist bool // Keep the session in memory for this invocation only
}

// Overrides converts the flags into config overrides.
func (f GlobalFlags) Overrides() config.FlagOverrides {
	return config.FlagOverrides{
		BaseURL:     f.BaseURL,
		OperatorKey: f.OperatorKey,
		Timeout:     f.Timeout,
		Verbose:     f.Verbose,
		Stats:       f.Stats,
	}
}

// Option customizes NewApp.
type Option func(*options)

type options struct {
	store  session.Store
	stdout io.Writer
	stderr io.Writer
}

// WithStore replaces the session store chosen from the environment.
func WithStore(s session.Store) Option {
	return func(o *options) { o.store = s }
}

// WithWriters redirects command output and diagnostics.
func WithWriters(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// NewApp creates a new App with the given configuration and flags.
func NewApp(cfg *config.Config, flags GlobalFlags, opts ...Option) (*App, error) {
	o := options{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	switch {
	case o.store != nil:
	case flags.NoPersist:
		o.store = session.NewMemoryStore()
	default:
		o.store = session.NewStore(cfg.SessionDir, cfg.BaseURL)
	}

	logger, err := logging.New(cfg.LogLevel, o.stderr)
	if err != nil {
		return nil, output.ErrUsage(err.Error())
	}

	format, err := resolveFormat(cfg, flags)
	if err != nil {
		return nil, err
	}

	// Collector always runs to gather stats; hooks control trace verbosity.
	collector := observability.NewSessionCollector()
	traceWriter := observability.NewTraceWriterTo(o.stderr)
	hooks := observability.NewCLIHooks(verbosity(flags.Verbose), collector, traceWriter)

	client := api.NewClient(cfg.BaseURL, nil,
		api.WithTimeout(cfg.Timeout),
		api.WithHooks(hooks),
		api.WithLogger(logger),
	)

	acc := session.NewAccessor(o.store)
	events := api.NewEvents()

	app := &App{
		Config:    cfg,
		Output:    output.New(output.Options{Format: format, Writer: o.stdout}),
		Logger:    logger,
		Session:   acc,
		Events:    events,
		Client:    client,
		Admin:     admin.NewWithKey(client, cfg.OperatorKey),
		Portal:    portal.New(client, acc, events),
		Collector: collector,
		Hooks:     hooks,
		Flags:     flags,
		stdout:    o.stdout,
		stderr:    o.stderr,
	}

	events.Subscribe(func(ev api.SessionInvalidated) {
		app.invalidated.Store(true)
		logger.Info("session invalidated", zap.Error(ev.Reason), zap.Time("at", ev.At))
	})

	logger.Debug("app initialized",
		zap.String("base_url", cfg.BaseURL),
		logging.Redacted("operator_key", cfg.OperatorKey),
		zap.Duration("timeout", cfg.Timeout),
	)
	return app, nil
}

// resolveFormat picks the output format. Flags win over the configured format,
// with the narrower machine modes taking precedence.
func resolveFormat(cfg *config.Config, flags GlobalFlags) (output.Format, error) {
	switch {
	case flags.IDsOnly:
		return output.FormatIDs, nil
	case flags.Count:
		return output.FormatCount, nil
	case flags.Quiet:
		return output.FormatQuiet, nil
	case flags.JSON:
		return output.FormatJSON, nil
	case flags.Styled:
		return output.FormatStyled, nil
	}
	return output.ParseFormat(cfg.Format)
}

// verbosity combines -v with RINGLIFY_DEBUG ("1", "2", or "true").
func verbosity(flagLevel int) int {
	level := flagLevel
	if debugEnv := os.Getenv("RINGLIFY_DEBUG"); debugEnv != "" {
		if n, err := strconv.Atoi(debugEnv); err == nil {
			if n > level {
				level = n
			}
		} else if debugEnv == "true" {
			level = 2
		}
	}
	return level
}

// SessionInvalidated reports whether the server rejected the stored session
// during this invocation.
func (a *App) SessionInvalidated() bool {
	return a.invalidated.Load()
}

// OK outputs a success response, automatically including stats if --stats is set.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	if a.statsEnabled() {
		opts = append(opts, output.WithStats(a.Collector.Summary()))
	}
	return a.Output.OK(data, opts...)
}

// Err outputs an error response. Stats and the re-login notice go to stderr,
// and only for human-facing output.
func (a *App) Err(err error) error {
	if outputErr := a.Output.Err(err); outputErr != nil {
		return outputErr
	}
	if a.isMachineOutput() {
		return nil
	}
	if a.SessionInvalidated() {
		fmt.Fprintln(a.stderr, "Signed out: the server rejected the stored session.")
	}
	if a.statsEnabled() {
		if parts := a.Collector.Summary().FormatParts(); len(parts) > 0 {
			fmt.Fprintf(a.stderr, "\nStats: %s\n", strings.Join(parts, " | "))
		}
	}
	return nil
}

func (a *App) statsEnabled() bool {
	return a.Collector != nil && (a.Flags.Stats || (a.Config != nil && a.Config.Stats))
}

// isMachineOutput returns true if the output mode is intended for programmatic consumption.
func (a *App) isMachineOutput() bool {
	switch a.Output.Format() {
	case output.FormatQuiet, output.FormatIDs, output.FormatCount, output.FormatJSON:
		return true
	case output.FormatAuto:
		return !isTerminal(a.stdout)
	}
	return false
}

// IsInteractive returns true if prompts can be shown.
func (a *App) IsInteractive() bool {
	if a.isMachineOutput() {
		return false
	}
	return isTerminal(a.stdout) && isTerminal(os.Stdin)
}

// Stderr returns the diagnostics writer.
func (a *App) Stderr() io.Writer {
	return a.stderr
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.Logger.Sync()
}

// WithApp stores the app in the context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from the context.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}
