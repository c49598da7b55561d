package completion

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ringlify/ringlify-cli/internal/appctx"
	"github.com/ringlify/ringlify-cli/internal/config"
)

// OriginFunc returns the backend origin whose businesses should be offered.
type OriginFunc func(cmd *cobra.Command) string

// DefaultOriginFunc resolves the origin by checking, in order, the --backend
// flag, the app in the command context, RINGLIFY_BACKEND_URL, and the default.
//
// During __complete PersistentPreRunE doesn't run, so config files are not
// consulted. A base_url set only in config.yaml will not match the cache.
func DefaultOriginFunc(cmd *cobra.Command) string {
	if root := cmd.Root(); root != nil {
		if flag := root.PersistentFlags().Lookup("backend"); flag != nil && flag.Changed {
			return config.NormalizeBaseURL(flag.Value.String())
		}
	}
	if ctx := cmd.Context(); ctx != nil {
		if app := appctx.FromContext(ctx); app != nil {
			return app.Config.BaseURL
		}
	}
	if v := os.Getenv("RINGLIFY_BACKEND_URL"); v != "" {
		return config.NormalizeBaseURL(v)
	}
	return config.NormalizeBaseURL(config.DefaultBaseURL)
}

// Completer provides tab completion functions for the ringlify CLI.
// It reads from the file cache and never initializes the App or calls the backend.
type Completer struct {
	store  *Store
	origin OriginFunc
}

// NewCompleter creates a new Completer. A nil store uses the default
// cache location; a nil origin uses DefaultOriginFunc.
func NewCompleter(store *Store, origin OriginFunc) *Completer {
	if store == nil {
		store = NewStore("")
	}
	if origin == nil {
		origin = DefaultOriginFunc
	}
	return &Completer{store: store, origin: origin}
}

// BusinessCompletion returns a Cobra completion function for business ID
// arguments. Only the first positional argument is completed.
func (c *Completer) BusinessCompletion() cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return c.businesses(cmd, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// BusinessFlagCompletion is BusinessCompletion for a --business flag value.
func (c *Completer) BusinessFlagCompletion() cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return c.businesses(cmd, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

func (c *Completer) businesses(cmd *cobra.Command, toComplete string) []cobra.Completion {
	cached := c.store.Businesses(c.origin(cmd))
	if len(cached) == 0 {
		return nil
	}

	sorted := make([]CachedBusiness, len(cached))
	copy(sorted, cached)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	needle := strings.ToLower(toComplete)
	var completions []cobra.Completion
	for _, b := range sorted {
		if strings.HasPrefix(strings.ToLower(b.ID), needle) ||
			strings.Contains(strings.ToLower(b.Name), needle) {
			completions = append(completions, cobra.CompletionWithDesc(b.ID, b.Name))
		}
	}
	return completions
}
