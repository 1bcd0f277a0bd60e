package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-contentforms"
	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/orchestrator"
	"github.com/goliatone/go-contentforms/pkg/render"
	"github.com/goliatone/go-contentforms/pkg/renderers/vanilla"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		rendererName string
		fragment     bool
		action       string
		subject      string
		themeName    string
		variant      string
	)

	cmd := &cobra.Command{
		Use:   "render <form>",
		Short: "Render a form once and print the markup",
		Long: `Render a freshly opened form with the HTML modal renderer (default) or the
terminal snapshot renderer. With --subject the form is quick-filled first.

Examples:
  contentforms render story_element --fragment
  contentforms render brand_voice --subject "a developer tools startup"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.manager.Get()

			registry, err := contentforms.NewRegistry(vanilla.WithTemplateEngine(cfg.Render.Engine))
			if err != nil {
				return err
			}
			generator, err := a.newGen(cfg.QuickFill)
			if err != nil {
				return fmt.Errorf("quickfill: %w", err)
			}
			opts := []orchestrator.Option{
				orchestrator.WithStore(a.store),
				orchestrator.WithRegistry(registry),
				orchestrator.WithFormOptions(a.formOptions(generator)...),
			}
			if manifest := cfg.Theme.Manifest(); manifest != nil {
				opts = append(opts, orchestrator.WithThemes(manifest.Name, cfg.Theme.Variant, manifest))
			}
			orch := orchestrator.New(opts...)

			f, err := orch.Open(args[0], form.WithOpen(true))
			if err != nil {
				return err
			}
			defer f.Dispose()

			if subject != "" {
				if err := quickFill(cmd.Context(), f, subject); err != nil {
					return err
				}
			}

			output, err := orch.Generate(cmd.Context(), orchestrator.Request{
				Form:     f,
				Renderer: rendererName,
				RenderOptions: render.RenderOptions{
					Action:   action,
					Fragment: fragment,
				},
				ThemeName:    themeName,
				ThemeVariant: variant,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
			return err
		},
	}

	cmd.Flags().StringVar(&rendererName, "renderer", "vanilla", "renderer: vanilla or tui")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "render only the dialog element")
	cmd.Flags().StringVar(&action, "action", "", "form action URL")
	cmd.Flags().StringVar(&subject, "subject", "", "quick-fill the form from this subject before rendering")
	cmd.Flags().StringVar(&themeName, "theme", "", "theme name (defaults to the configured theme)")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant")
	return cmd
}

// quickFill runs a generation to completion and reports its failure.
func quickFill(ctx context.Context, f *form.Form, subject string) error {
	if err := f.SetSubject(subject); err != nil {
		return err
	}
	started, err := f.QuickFill()
	if err != nil {
		return err
	}
	if !started {
		return nil
	}
	if err := f.Wait(ctx); err != nil {
		return err
	}
	if snap := f.Snapshot(); snap.Fill == form.FillFailed {
		return snap.FillErr
	}
	return nil
}
