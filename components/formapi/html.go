package formapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/render"
	"github.com/goliatone/go-contentforms/pkg/renderers/vanilla"
)

// Intents posted by the rendered modal's buttons.
const (
	IntentSubmit    = "submit"
	IntentCancel    = "cancel"
	IntentQuickFill = "quickfill"
	IntentRetry     = "retry"
	intentAdd       = "add:"
	intentRemove    = "remove:"
)

var errCSRF = StatusError{Code: http.StatusForbidden, Err: errors.New("formapi: invalid csrf token")}

func (s *server) handleRenderHTML(w http.ResponseWriter, r *http.Request, entry *session) {
	s.renderHTML(w, r, entry, render.RenderOptions{}, http.StatusOK)
}

// handlePostHTML applies the posted record, staging and subject values, then
// runs the intent of the pressed button and re-renders the modal.
func (s *server) handlePostHTML(w http.ResponseWriter, r *http.Request, entry *session) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("formapi: parse form: %w", err)})
		return
	}
	if s.opts.CSRF != nil {
		if token := s.opts.CSRF(r); token != "" && r.PostForm.Get(s.opts.CSRFField) != token {
			s.writeError(w, r, errCSRF)
			return
		}
	}

	var opts render.RenderOptions
	status := http.StatusOK
	if entry.form.IsOpen() {
		err := applyPosted(entry.form, r.PostForm)
		if err == nil {
			opts, err = s.runIntent(entry, r.PostForm.Get(vanilla.IntentName))
		}
		if err != nil {
			status = statusFor(err)
			if status == http.StatusBadRequest || status >= http.StatusInternalServerError {
				s.writeError(w, r, err)
				return
			}
			if status != http.StatusUnprocessableEntity {
				opts.FormErrors = render.MergeFormErrors(opts.FormErrors, err.Error())
			}
		}
	}
	s.renderHTML(w, r, entry, opts, status)
}

func applyPosted(f *form.Form, values url.Values) error {
	snap := f.Snapshot()
	for _, field := range snap.Schema.Fields {
		if _, ok := values[field.Name]; ok {
			if err := f.SetField(field.Name, values.Get(field.Name)); err != nil {
				return err
			}
		}
	}
	for _, list := range snap.Schema.Lists {
		for _, sub := range list.Fields {
			name := vanilla.StageInputName(list.Name, sub.Name)
			if _, ok := values[name]; ok {
				if err := f.Stage(list.Name, sub.Name, values.Get(name)); err != nil {
					return err
				}
			}
		}
	}
	if _, ok := values[vanilla.SubjectName]; ok && !snap.Generating() {
		if err := f.SetSubject(values.Get(vanilla.SubjectName)); err != nil {
			return err
		}
	}
	return nil
}

func (s *server) runIntent(entry *session, intent string) (render.RenderOptions, error) {
	var opts render.RenderOptions
	f := entry.form
	switch {
	case intent == "" || intent == IntentSubmit:
		_, err := f.Submit()
		var validationErr *form.ValidationError
		if errors.As(err, &validationErr) {
			opts = opts.WithValidation(render.MapValidationError(f.Schema(), validationErr))
		}
		if err == nil {
			s.logger.Info("session submitted", "form", entry.formID, "session", entry.id)
		}
		return opts, err
	case intent == IntentCancel:
		return opts, f.Cancel()
	case intent == IntentQuickFill:
		_, err := f.QuickFill()
		return opts, err
	case intent == IntentRetry:
		return opts, f.Retry()
	case strings.HasPrefix(intent, intentAdd):
		list := strings.TrimPrefix(intent, intentAdd)
		result, err := f.Add(list)
		if err != nil {
			return opts, err
		}
		if !result.Added {
			opts.Errors = make(map[string][]string, len(result.Missing))
			for _, field := range result.Missing {
				opts.Errors[list+"."+field] = []string{"is required"}
			}
		}
		return opts, nil
	case strings.HasPrefix(intent, intentRemove):
		list, rawIndex, ok := strings.Cut(strings.TrimPrefix(intent, intentRemove), ":")
		index, err := strconv.Atoi(rawIndex)
		if !ok || err != nil {
			return opts, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("formapi: invalid intent %q", intent)}
		}
		_, err = f.Remove(list, index)
		return opts, err
	default:
		return opts, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("formapi: unknown intent %q", intent)}
	}
}

func (s *server) renderHTML(w http.ResponseWriter, r *http.Request, entry *session, opts render.RenderOptions, status int) {
	snap := entry.form.Snapshot()

	opts.Action = r.RequestURI
	if opts.Action == "" {
		opts.Action = r.URL.Path
	}
	hidden := []render.HiddenField{render.SessionField(entry.id), render.RevisionField(snap.Revision)}
	if s.opts.CSRF != nil {
		if token := s.opts.CSRF(r); token != "" {
			hidden = append(hidden, render.CSRFToken(s.opts.CSRFField, token))
		}
	}
	opts.Hidden = render.MergeHiddenFields(opts.Hidden, hidden...)
	opts.Fragment = r.URL.Query().Get("fragment") != "" || r.Header.Get("HX-Request") == "true"

	if s.opts.Themes != nil {
		name, variant := s.opts.Theme, s.opts.Variant
		if q := r.URL.Query().Get("theme"); q != "" {
			name = q
		}
		if q := r.URL.Query().Get("variant"); q != "" {
			variant = q
		}
		selection, err := s.opts.Themes.Select(name, variant)
		if err != nil {
			s.logger.Warn("theme selection failed", "theme", name, "variant", variant, "error", err)
		} else {
			opts.Theme = render.ThemeConfig(selection, nil)
		}
	}

	out, err := s.html.Render(r.Context(), snap, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", s.html.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(out)
}
