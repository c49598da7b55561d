package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ringlify/ringlify-cli/internal/kb"
	"github.com/ringlify/ringlify-cli/internal/output"
)

// NewKBCmd creates the knowledge base command group.
func NewKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kb",
		Aliases: []string{"knowledge-base"},
		Short:   "Show or replace your knowledge base",
		Long: `The knowledge base is a JSON object your call assistant answers from.

Well-known sections:
  address         string
  hours           {"mon": {"open": "09:00", "close": "17:00"}, ...}
  menuHighlights  ["..."]
  policies        {"cancellation": "...", ...}

Other keys are stored as given.`,
	}
	cmd.AddCommand(newKBShowCmd(), newKBSetCmd())
	return cmd
}

func newKBShowCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the knowledge base",
		Example: `  ringlify kb show
  ringlify kb show --query '.hours.mon'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			b, err := app.Portal.Business(cmd.Context())
			if err != nil {
				return err
			}
			return showKnowledgeBase(cmd, b.KnowledgeBase, query)
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "jq expression to apply")

	return cmd
}

func showKnowledgeBase(cmd *cobra.Command, doc map[string]any, query string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}
	if query == "" {
		if doc == nil {
			doc = map[string]any{}
		}
		return app.OK(doc, output.WithSummary(fmt.Sprintf("%d sections", len(doc))))
	}

	result, err := kb.Query(cmd.Context(), doc, query)
	if err != nil {
		return err
	}
	return app.OK(result, output.WithMeta("query", query))
}

func newKBSetCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the knowledge base",
		Long:  "Replace the knowledge base with a JSON object read from --file (- for stdin). Invalid JSON is never sent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			doc, err := loadKnowledgeBase(cmd, file)
			if err != nil {
				return err
			}

			b, err := app.Portal.UpdateKnowledgeBase(cmd.Context(), doc)
			if err != nil {
				return err
			}
			return app.OK(b.KnowledgeBase, output.WithSummary("Knowledge base updated for "+b.Name))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file, or - for stdin")

	return cmd
}

// loadKnowledgeBase reads, parses and validates a document before anything is sent.
func loadKnowledgeBase(cmd *cobra.Command, file string) (map[string]any, error) {
	data, err := readInput(file, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	doc, err := kb.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := kb.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
