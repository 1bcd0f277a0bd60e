package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-contentforms/components/formapi"
)

func newOpenAPICmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI description of the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := formapi.Document(a.store, "Content Forms API", gitRelease)
			return writeDocument(cmd.OutOrStdout(), format, doc)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: yaml or json")
	return cmd
}
