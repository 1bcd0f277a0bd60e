package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/renderers/tui"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		format  string
		outFile string
		subject string
	)

	cmd := &cobra.Command{
		Use:   "fill <form>",
		Short: "Fill a form interactively in the terminal",
		Long: `Open a form in the terminal, optionally quick-fill it from a subject, edit
its fields and lists, then print the submitted payload.

Examples:
  contentforms fill story_element
  contentforms fill brand_voice --format pretty
  contentforms fill story_element --subject "a late night outage" -o element.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			declared, ok := a.store.Form(args[0])
			if !ok {
				return fmt.Errorf("unknown form %q (known: %v)", args[0], a.store.IDs())
			}

			generator, err := a.newGen(a.manager.Get().QuickFill)
			if err != nil {
				return fmt.Errorf("quickfill: %w", err)
			}
			f, err := form.New(declared, a.formOptions(generator)...)
			if err != nil {
				return err
			}
			defer f.Dispose()

			if err := f.SetOpen(true); err != nil {
				return err
			}
			if subject != "" {
				if err := f.SetSubject(subject); err != nil {
					return err
				}
			}

			driver := a.driver
			if driver == nil {
				driver = tui.NewSurveyDriver(cmd.ErrOrStderr())
			}
			renderer := tui.New(
				tui.WithPromptDriver(driver),
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithLogger(a.logger),
			)

			output, err := renderer.Run(cmd.Context(), f)
			switch {
			case errors.Is(err, tui.ErrCancelled):
				fmt.Fprintln(cmd.ErrOrStderr(), "form cancelled")
				return nil
			case err != nil:
				return err
			}

			if outFile != "" {
				if err := os.WriteFile(outFile, append(output, '\n'), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outFile, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "payload written to %s\n", outFile)
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "payload format: json, form or pretty")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the payload to a file instead of stdout")
	cmd.Flags().StringVar(&subject, "subject", "", "prefill the quick-fill subject")
	return cmd
}
