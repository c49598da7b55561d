package completion

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringlify/ringlify-cli/internal/models"
)

// newTestCompleter creates a Completer over a seeded cache with a fixed origin.
func newTestCompleter(t *testing.T, list ...models.Business) *Completer {
	t.Helper()
	store := NewStore(t.TempDir())
	require.NoError(t, store.UpdateBusinesses(origin, list))
	return NewCompleter(store, func(*cobra.Command) string { return origin })
}

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestBusinessCompletion(t *testing.T) {
	c := newTestCompleter(t,
		models.Business{ID: "b2", Name: "dental co"},
		models.Business{ID: "b1", Name: "Corner Cafe"},
		models.Business{ID: "x9", Name: "Auto Repair"},
	)
	fn := c.BusinessCompletion()

	got, directive := fn(newTestCmd(), nil, "")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.Equal(t, []cobra.Completion{
		cobra.CompletionWithDesc("x9", "Auto Repair"),
		cobra.CompletionWithDesc("b1", "Corner Cafe"),
		cobra.CompletionWithDesc("b2", "dental co"),
	}, got)

	got, _ = fn(newTestCmd(), nil, "b")
	assert.Len(t, got, 2, "ID prefix match")

	got, _ = fn(newTestCmd(), nil, "CAFE")
	assert.Equal(t, []cobra.Completion{cobra.CompletionWithDesc("b1", "Corner Cafe")}, got)
}

func TestBusinessCompletionOnlyFirstArg(t *testing.T) {
	c := newTestCompleter(t, models.Business{ID: "b1", Name: "Cafe"})

	got, directive := c.BusinessCompletion()(newTestCmd(), []string{"b1"}, "")
	assert.Nil(t, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestBusinessFlagCompletion(t *testing.T) {
	c := newTestCompleter(t, models.Business{ID: "b1", Name: "Cafe"})

	got, _ := c.BusinessFlagCompletion()(newTestCmd(), []string{"ignored"}, "")
	assert.Len(t, got, 1)
}

func TestBusinessCompletionEmptyCache(t *testing.T) {
	c := NewCompleter(NewStore(t.TempDir()), func(*cobra.Command) string { return origin })

	got, directive := c.BusinessCompletion()(newTestCmd(), nil, "")
	assert.Nil(t, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestDefaultOriginFunc(t *testing.T) {
	t.Setenv("RINGLIFY_BACKEND_URL", "")
	assert.Equal(t, "http://localhost:3000", DefaultOriginFunc(newTestCmd()))

	t.Setenv("RINGLIFY_BACKEND_URL", "api.ringlify.example/")
	assert.Equal(t, "https://api.ringlify.example", DefaultOriginFunc(newTestCmd()))

	root := &cobra.Command{Use: "ringlify"}
	root.PersistentFlags().String("backend", "", "")
	child := &cobra.Command{Use: "show"}
	root.AddCommand(child)
	child.SetContext(context.Background())
	require.NoError(t, root.PersistentFlags().Set("backend", "127.0.0.1:4000"))
	assert.Equal(t, "http://127.0.0.1:4000", DefaultOriginFunc(child))
}
