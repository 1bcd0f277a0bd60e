// Package tui drives content forms from a terminal. Run walks a live form
// through quick-fill, field prompts and list menus; Render prints a snapshot
// without prompting.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/render"
	"github.com/goliatone/go-contentforms/pkg/widgets"
)

const noneOption = "(none)"

// Renderer implements render.Renderer for terminal sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	widgets      *widgets.Registry
	theme        Theme
	logger       *slog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       NewSurveyDriver(nil),
		outputFormat: OutputFormatJSON,
		widgets:      widgets.NewRegistry(),
		theme:        Theme{ErrorPrefix: "! "},
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render and Run.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render serializes the snapshot's current payload. Pretty output also lists
// the quick-fill state and any errors carried by opts.
func (r *Renderer) Render(ctx context.Context, snap form.Snapshot, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.outputFormat == OutputFormatPrettyText {
		return []byte(prettySnapshot(snap, opts)), nil
	}
	return serialize(r.outputFormat, snap.Schema, snap.Payload())
}

// Run prompts until the form is submitted or cancelled and returns the
// serialized payload. Cancelling returns ErrCancelled.
func (r *Renderer) Run(ctx context.Context, f *form.Form) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}
	if f == nil {
		return nil, errors.New("tui: form is nil")
	}
	if !f.IsOpen() {
		if err := f.SetOpen(true); err != nil {
			return nil, err
		}
	}

	schema := f.Schema()
	if err := r.info(ctx, schema.Title); err != nil {
		return nil, err
	}
	if schema.Description != "" {
		if err := r.info(ctx, schema.Description); err != nil {
			return nil, err
		}
	}
	if schema.QuickFill.Enabled {
		if err := r.quickFill(ctx, f); err != nil {
			return nil, err
		}
	}

	submitLabel := schema.SubmitLabel
	if submitLabel == "" {
		submitLabel = "Submit"
	}
	for {
		if err := r.promptFields(ctx, f); err != nil {
			return nil, err
		}
		if err := r.promptLists(ctx, f); err != nil {
			return nil, err
		}

		choice, err := r.driver.Select(ctx, SelectConfig{
			Message: "What next?",
			Options: []string{submitLabel, "Edit again", "Cancel"},
		})
		if err != nil {
			return nil, err
		}
		switch choice {
		case 0:
			payload, err := f.Submit()
			var verr *form.ValidationError
			if errors.As(err, &verr) {
				for _, issue := range verr.Issues {
					if err := r.fail(ctx, fmt.Sprintf("%s: %s", issue.Field, issue.Message)); err != nil {
						return nil, err
					}
				}
				continue
			}
			if err != nil {
				return nil, err
			}
			r.logger.Debug("tui submitted", "form", schema.ID)
			return serialize(r.outputFormat, schema, payload)
		case 1:
			continue
		default:
			if err := f.Cancel(); err != nil {
				return nil, err
			}
			return nil, ErrCancelled
		}
	}
}

func (r *Renderer) quickFill(ctx context.Context, f *form.Form) error {
	qf := f.Schema().QuickFill
	label := qf.Label
	if label == "" {
		label = "Quick fill"
	}
	ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label + "?"})
	if err != nil || !ok {
		return err
	}

	subjectLabel := qf.SubjectLabel
	if subjectLabel == "" {
		subjectLabel = "Subject"
	}
	subject, err := r.driver.Input(ctx, InputConfig{
		Message:   subjectLabel,
		Default:   f.Snapshot().Subject,
		Help:      qf.SubjectPlaceholder,
		Validator: requiredValue,
	})
	if err != nil {
		return err
	}
	if err := f.SetSubject(subject); err != nil {
		return err
	}
	started, err := f.QuickFill()
	if err != nil || !started {
		return err
	}

	for {
		if err := r.info(ctx, "Generating..."); err != nil {
			return err
		}
		if err := f.Wait(ctx); err != nil {
			return err
		}
		snap := f.Snapshot()
		if snap.Fill != form.FillFailed {
			return r.info(ctx, "Quick-fill applied.")
		}
		retry, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Quick-fill failed (%v). Retry?", snap.FillErr),
			Default: true,
		})
		if err != nil || !retry {
			return err
		}
		if err := f.Retry(); err != nil {
			return err
		}
	}
}

func (r *Renderer) promptFields(ctx context.Context, f *form.Form) error {
	snap := f.Snapshot()
	for _, field := range snap.Schema.Fields {
		value, err := r.promptValue(ctx, field, snap.Record.Get(field.Name))
		if err != nil {
			return err
		}
		if err := f.SetField(field.Name, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptValue(ctx context.Context, field model.Field, current string) (string, error) {
	message := field.Label
	if message == "" {
		message = field.Name
	}
	var validator func(string) error
	if field.Required {
		message += " *"
		validator = requiredValue
	}

	widget, _ := r.widgets.Resolve(field)
	switch {
	case widget == widgets.WidgetSelect && len(field.Enum) > 0:
		options := field.Enum
		if !field.Required {
			options = append([]string{noneOption}, field.Enum...)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, current, field.Required),
			Help:         field.Description,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(options) || options[idx] == noneOption {
			return "", nil
		}
		return options[idx], nil
	case widget == widgets.WidgetTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{
			Message:   message,
			Default:   current,
			Help:      helpText(field),
			Validator: validator,
		})
	default:
		return r.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   current,
			Help:      helpText(field),
			Validator: validator,
		})
	}
}

func (r *Renderer) promptLists(ctx context.Context, f *form.Form) error {
	for _, list := range f.Schema().Lists {
		if err := r.promptList(ctx, f, list); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptList(ctx context.Context, f *form.Form, list model.List) error {
	addLabel := list.AddLabel
	if addLabel == "" {
		addLabel = "Add"
	}
	for {
		items := f.Snapshot().Lists[list.Name]
		if err := r.info(ctx, fmt.Sprintf("%s: %s", list.Label, summarizeItems(list, items))); err != nil {
			return err
		}

		options := []string{addLabel}
		if len(items) > 0 {
			options = append(options, "Remove an item")
		}
		options = append(options, "Done")
		idx, err := r.driver.Select(ctx, SelectConfig{Message: list.Label, Options: options})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			return nil
		}
		switch options[idx] {
		case "Done":
			return nil
		case "Remove an item":
			if err := r.removeItem(ctx, f, list, items); err != nil {
				return err
			}
		default:
			if err := r.addItem(ctx, f, list); err != nil {
				return err
			}
		}
	}
}

func (r *Renderer) addItem(ctx context.Context, f *form.Form, list model.List) error {
	for _, sub := range list.Fields {
		value, err := r.promptValue(ctx, sub, "")
		if err != nil {
			return err
		}
		if err := f.Stage(list.Name, sub.Name, value); err != nil {
			return err
		}
	}

	var result form.AddResult
	if list.Shape == model.ItemShapeScalar {
		key, err := f.KeyDown(list.Name, form.KeyEnter)
		if err != nil {
			return err
		}
		result = key.Add
	} else {
		var err error
		if result, err = f.Add(list.Name); err != nil {
			return err
		}
	}
	if !result.Added {
		return r.fail(ctx, "missing "+strings.Join(result.Missing, ", "))
	}
	return nil
}

func (r *Renderer) removeItem(ctx context.Context, f *form.Form, list model.List, items []form.Item) error {
	options := make([]string, 0, len(items)+1)
	for _, item := range items {
		options = append(options, itemLabel(list, item))
	}
	options = append(options, "Back")
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Remove which item?", Options: options})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(items) {
		return nil
	}
	_, err = f.Remove(list.Name, idx)
	return err
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) fail(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func requiredValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("value is required")
	}
	return nil
}

func helpText(field model.Field) string {
	if field.Description != "" {
		return field.Description
	}
	return field.Placeholder
}

func indexOf(options []string, value string, required bool) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	if required {
		return -1
	}
	return 0
}
