// Package commands implements the CLI commands.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ringlify/ringlify-cli/internal/appctx"
	"github.com/ringlify/ringlify-cli/internal/dateparse"
	"github.com/ringlify/ringlify-cli/internal/models"
	"github.com/ringlify/ringlify-cli/internal/output"
)

// appFrom returns the app stored on the command's context.
func appFrom(cmd *cobra.Command) (*appctx.App, error) {
	app := appctx.FromContext(cmd.Context())
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}

// parseDateFlag resolves a natural-language date flag to YYYY-MM-DD.
// An empty value stays empty so the filter is omitted.
func parseDateFlag(flag, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	date, err := dateparse.Parse(value)
	if err != nil {
		e := output.AsError(err)
		return "", output.ErrUsageHint(fmt.Sprintf("--%s: %s", flag, e.Message), e.Hint)
	}
	return date, nil
}

// dateRange parses a --start/--end pair.
func dateRange(start, end string) (string, string, error) {
	s, err := parseDateFlag("start", start)
	if err != nil {
		return "", "", err
	}
	e, err := parseDateFlag("end", end)
	if err != nil {
		return "", "", err
	}
	return s, e, nil
}

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		return nil, output.ErrUsage("--file required (use - for stdin)")
	}
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-supplied input file
	if err != nil {
		return nil, output.ErrUsage(fmt.Sprintf("cannot read %s: %v", path, err))
	}
	return data, nil
}

// pageSummary describes a fetched page, e.g. "3 of 1,204 appointments (page 2/121)".
func pageSummary(noun string, shown int, p models.Pagination) string {
	s := fmt.Sprintf("%s of %s %s", output.FormatNumber(shown), output.FormatNumber(p.Total), noun)
	if p.TotalPages > 1 {
		s += fmt.Sprintf(" (page %d/%d)", p.Page, p.TotalPages)
	}
	return s
}

// nextPage suggests the following page when there is one.
func nextPage(base string, p models.Pagination) []output.Breadcrumb {
	if p.Page == 0 || p.Page >= p.TotalPages {
		return nil
	}
	return []output.Breadcrumb{{
		Action:      "next",
		Cmd:         fmt.Sprintf("%s --page %d", base, p.Page+1),
		Description: "Next page",
	}}
}

// optionalString returns a pointer to v when the flag was set.
func optionalString(cmd *cobra.Command, flag, v string) *string {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &v
}
