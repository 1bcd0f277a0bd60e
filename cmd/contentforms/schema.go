package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-contentforms/pkg/model"
)

func newSchemaCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema [form]",
		Short: "List declared forms or print one form schema",
		Long: `Without arguments, list the declared forms. With a form id, print its
normalised schema, including labels and widget hints.

Examples:
  contentforms schema
  contentforms schema story_element --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tQUICK-FILL")
				for _, id := range a.store.IDs() {
					declared, _ := a.store.Form(id)
					fmt.Fprintf(tw, "%s\t%s\t%t\n", id, declared.Title, declared.QuickFill.Enabled)
				}
				return tw.Flush()
			}

			declared, ok := a.store.Form(args[0])
			if !ok {
				return fmt.Errorf("unknown form %q (known: %v)", args[0], a.store.IDs())
			}
			return writeDocument(cmd.OutOrStdout(), format, schemaDocument(declared))
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}

// schemaDocument drops the canned quick-fill dataset from the printed schema.
func schemaDocument(declared model.FormSchema) model.FormSchema {
	declared.QuickFill.Dataset = model.Dataset{}
	return declared
}
