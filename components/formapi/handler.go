package formapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/render"
	"github.com/goliatone/go-contentforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-contentforms/pkg/schema"
	"github.com/goliatone/go-contentforms/pkg/validation"
)

const maxBodyBytes = 1 << 20

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

var errSessionNotFound = StatusError{Code: http.StatusNotFound, Err: errors.New("formapi: session not found")}

// Handler builds a net/http handler with default options plus any overrides.
// It is an alias of NewHandler to match the recommended component API surface.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds a handler from a pre-constructed Options value.
// Routes are relative to the handler root; RegisterRoutes mounts them under
// the route path. Construction failures answer every request with 500.
func HandlerWithOptions(opts Options) http.Handler {
	srv, err := newServer(opts)
	if err != nil {
		opts = NewOptions(func(o *Options) { *o = opts })
		opts.Logger.Error("formapi: build handler", "error", err)
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		})
	}
	return srv
}

type server struct {
	opts      Options
	store     *schema.Store
	validator form.Validator
	html      render.Renderer
	sessions  *sessions
	mux       *http.ServeMux
	logger    *slog.Logger
}

func newServer(opts Options) (*server, error) {
	opts = NewOptions(func(o *Options) { *o = opts })

	store := opts.Store
	if store == nil {
		loaded, err := schema.Default()
		if err != nil {
			return nil, fmt.Errorf("formapi: load schemas: %w", err)
		}
		store = loaded
	}
	validator := opts.Validator
	if validator == nil {
		validator = validation.New()
	}
	html := opts.Renderer
	if html == nil {
		renderer, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("formapi: html renderer: %w", err)
		}
		html = renderer
	}

	s := &server{
		opts:      opts,
		store:     store,
		validator: validator,
		html:      html,
		sessions:  newSessions(opts.MaxSessions),
		mux:       http.NewServeMux(),
		logger:    opts.Logger,
	}
	s.routes()
	return s, nil
}

func (s *server) routes() {
	s.mux.HandleFunc("GET /forms", s.handleListForms)
	s.mux.HandleFunc("GET /forms/{form}", s.handleGetForm)
	s.mux.HandleFunc("GET /forms/{form}/payload-schema", s.handlePayloadSchema)
	s.mux.HandleFunc("POST /forms/{form}/sessions", s.handleOpenSession)
	s.mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)

	s.mux.HandleFunc("GET /sessions/{id}", s.withSession(s.handleSnapshot))
	s.mux.HandleFunc("DELETE /sessions/{id}", s.handleDisposeSession)
	s.mux.HandleFunc("POST /sessions/{id}/open", s.withSession(s.handleReopen))
	s.mux.HandleFunc("PUT /sessions/{id}/fields/{field}", s.withSession(s.handleSetField))
	s.mux.HandleFunc("PUT /sessions/{id}/lists/{list}/staging", s.withSession(s.handleStage))
	s.mux.HandleFunc("POST /sessions/{id}/lists/{list}/items", s.withSession(s.handleAdd))
	s.mux.HandleFunc("DELETE /sessions/{id}/lists/{list}/items/{index}", s.withSession(s.handleRemove))
	s.mux.HandleFunc("POST /sessions/{id}/lists/{list}/keydown", s.withSession(s.handleKeyDown))
	s.mux.HandleFunc("PUT /sessions/{id}/subject", s.withSession(s.handleSubject))
	s.mux.HandleFunc("POST /sessions/{id}/quickfill", s.withSession(s.handleQuickFill))
	s.mux.HandleFunc("POST /sessions/{id}/quickfill/retry", s.withSession(s.handleRetry))
	s.mux.HandleFunc("GET /sessions/{id}/quickfill/wait", s.withSession(s.handleWait))
	s.mux.HandleFunc("POST /sessions/{id}/submit", s.withSession(s.handleSubmit))
	s.mux.HandleFunc("POST /sessions/{id}/cancel", s.withSession(s.handleCancel))
	s.mux.HandleFunc("GET /sessions/{id}/html", s.withSession(s.handleRenderHTML))
	s.mux.HandleFunc("POST /sessions/{id}/html", s.withSession(s.handlePostHTML))
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if s.opts.Guard != nil {
		if err := s.opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return
		}
	}
	s.mux.ServeHTTP(w, r)
}

// Close disposes every live session.
func (s *server) Close() {
	s.sessions.close()
}

type formSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	QuickFill   bool   `json:"quickFill"`
}

func (s *server) handleListForms(w http.ResponseWriter, _ *http.Request) {
	ids := s.store.IDs()
	out := make([]formSummary, 0, len(ids))
	for _, id := range ids {
		schema, ok := s.store.Form(id)
		if !ok {
			continue
		}
		out = append(out, formSummary{
			ID:          schema.ID,
			Title:       schema.Title,
			Description: schema.Description,
			QuickFill:   schema.QuickFill.Enabled,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	schema, err := s.lookupForm(r.PathValue("form"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (s *server) handlePayloadSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.lookupForm(r.PathValue("form"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, validation.PayloadSchema(schema))
}

func (s *server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc := Document(s.store, s.opts.Title, s.opts.Version)
	raw, err := doc.MarshalJSON()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

type openRequest struct {
	Subject string            `json:"subject"`
	Values  map[string]string `json:"values"`
}

func (s *server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	schema, err := s.lookupForm(r.PathValue("form"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body openRequest
	if err := decodeOptionalBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	entry, err := s.openSession(schema)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	names := make([]string, 0, len(body.Values))
	for name := range body.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := entry.form.SetField(name, body.Values[name]); err != nil {
			s.sessions.remove(entry.id)
			s.writeError(w, r, err)
			return
		}
	}
	if body.Subject != "" {
		if err := entry.form.SetSubject(body.Subject); err != nil {
			s.sessions.remove(entry.id)
			s.writeError(w, r, err)
			return
		}
	}

	s.logger.Info("session opened", "form", schema.ID, "session", entry.id)
	w.Header().Set("Location", "sessions/"+entry.id)
	writeJSON(w, http.StatusCreated, newSessionView(entry))
}

func (s *server) openSession(schema model.FormSchema) (*session, error) {
	id := s.opts.NewID()
	opts := []form.Option{
		form.WithLogger(s.logger.With("session", id)),
		form.WithValidator(s.validator),
	}
	if s.opts.Generator != nil {
		opts = append(opts, form.WithGenerator(s.opts.Generator))
	}
	if s.opts.OnSubmit != nil {
		onSubmit, formID := s.opts.OnSubmit, schema.ID
		opts = append(opts, form.WithOnSubmit(func(payload form.Payload) {
			onSubmit(formID, id, payload)
		}))
	}
	opts = append(opts, s.opts.FormOptions...)

	f, err := form.New(schema, opts...)
	if err != nil {
		return nil, err
	}
	entry := &session{id: id, formID: schema.ID, form: f, created: time.Now()}
	s.sessions.add(entry)
	return entry, nil
}

func (s *server) handleDisposeSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.remove(r.PathValue("id")) {
		s.writeError(w, r, errSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, entry *session)

func (s *server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, ok := s.sessions.get(r.PathValue("id"))
		if !ok {
			s.writeError(w, r, errSessionNotFound)
			return
		}
		next(w, r, entry)
	}
}

func (s *server) handleSnapshot(w http.ResponseWriter, _ *http.Request, entry *session) {
	writeJSON(w, http.StatusOK, newSessionView(entry))
}

func (s *server) handleReopen(w http.ResponseWriter, r *http.Request, entry *session) {
	if err := entry.form.SetOpen(true); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(entry))
}

type valueRequest struct {
	Value string `json:"value"`
}

func (s *server) handleSetField(w http.ResponseWriter, r *http.Request, entry *session) {
	var body valueRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := entry.form.SetField(r.PathValue("field"), body.Value); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(entry))
}

type stageRequest struct {
	Values map[string]string `json:"values"`
}

func (s *server) handleStage(w http.ResponseWriter, r *http.Request, entry *session) {
	var body stageRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := stageValues(entry.form, r.PathValue("list"), body.Values); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(entry))
}

type addResponse struct {
	Result  form.AddResult `json:"result"`
	Session sessionView    `json:"session"`
}

// handleAdd stages the optional body values and adds the item. A rejected
// add is not an error: the result carries the missing sub-fields.
func (s *server) handleAdd(w http.ResponseWriter, r *http.Request, entry *session) {
	var body stageRequest
	if err := decodeOptionalBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	list := r.PathValue("list")
	if err := stageValues(entry.form, list, body.Values); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := entry.form.Add(list)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addResponse{Result: result, Session: newSessionView(entry)})
}

type removeResponse struct {
	Removed bool        `json:"removed"`
	Session sessionView `json:"session"`
}

func (s *server) handleRemove(w http.ResponseWriter, r *http.Request, entry *session) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.writeError(w, r, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("formapi: invalid index %q", r.PathValue("index"))})
		return
	}
	removed, err := entry.form.Remove(r.PathValue("list"), index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removeResponse{Removed: removed, Session: newSessionView(entry)})
}

type keyRequest struct {
	Key string `json:"key"`
}

type keyResponse struct {
	Result  form.KeyResult `json:"result"`
	Session sessionView    `json:"session"`
}

func (s *server) handleKeyDown(w http.ResponseWriter, r *http.Request, entry *session) {
	var body keyRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := entry.form.KeyDown(r.PathValue("list"), body.Key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, keyResponse{Result: result, Session: newSessionView(entry)})
}

type subjectRequest struct {
	Subject string `json:"subject"`
}

func (s *server) handleSubject(w http.ResponseWriter, r *http.Request, entry *session) {
	var body subjectRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := entry.form.SetSubject(body.Subject); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(entry))
}

type quickFillResponse struct {
	Started bool        `json:"started"`
	Session sessionView `json:"session"`
}

// handleQuickFill optionally sets the subject from the body, then starts the
// generation. A blank subject answers 200 with started=false.
func (s *server) handleQuickFill(w http.ResponseWriter, r *http.Request, entry *session) {
	var body subjectRequest
	if err := decodeOptionalBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Subject != "" {
		if err := entry.form.SetSubject(body.Subject); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	started, err := entry.form.QuickFill()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if started {
		status = http.StatusAccepted
	}
	writeJSON(w, status, quickFillResponse{Started: started, Session: newSessionView(entry)})
}

func (s *server) handleRetry(w http.ResponseWriter, r *http.Request, entry *session) {
	if err := entry.form.Retry(); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, quickFillResponse{Started: true, Session: newSessionView(entry)})
}

// handleWait blocks until the pending quick-fill settles. When the wait
// times out the current snapshot is returned with 202.
func (s *server) handleWait(w http.ResponseWriter, r *http.Request, entry *session) {
	timeout := s.opts.WaitTimeout
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, r, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("formapi: invalid timeout %q", raw)})
			return
		}
		if parsed < timeout {
			timeout = parsed
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	status := http.StatusOK
	if err := entry.form.Wait(ctx); err != nil {
		status = http.StatusAccepted
	}
	writeJSON(w, status, newSessionView(entry))
}

type submitResponse struct {
	Payload form.Payload `json:"payload"`
	Session sessionView  `json:"session"`
}

type validationResponse struct {
	Error      string              `json:"error"`
	Errors     map[string][]string `json:"errors,omitempty"`
	FormErrors []string            `json:"formErrors,omitempty"`
	Issues     []form.FieldIssue   `json:"issues"`
}

func (s *server) handleSubmit(w http.ResponseWriter, r *http.Request, entry *session) {
	payload, err := entry.form.Submit()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session submitted", "form", entry.formID, "session", entry.id)
	writeJSON(w, http.StatusOK, submitResponse{Payload: payload, Session: newSessionView(entry)})
}

func (s *server) handleCancel(w http.ResponseWriter, r *http.Request, entry *session) {
	if err := entry.form.Cancel(); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(entry))
}

func (s *server) lookupForm(id string) (model.FormSchema, error) {
	schema, ok := s.store.Form(id)
	if !ok {
		return model.FormSchema{}, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("formapi: form %q not found", id)}
	}
	return schema, nil
}

func stageValues(f *form.Form, list string, values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := f.Stage(list, name, values[name]); err != nil {
			return err
		}
	}
	return nil
}

func statusFor(err error) int {
	var httpErr HTTPError
	var validationErr *form.ValidationError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, form.ErrUnknownField), errors.Is(err, form.ErrUnknownList):
		return http.StatusNotFound
	case errors.Is(err, form.ErrClosed),
		errors.Is(err, form.ErrDisposed),
		errors.Is(err, form.ErrSubmitting),
		errors.Is(err, form.ErrGenerating),
		errors.Is(err, form.ErrNotFailed),
		errors.Is(err, form.ErrQuickFillDisabled),
		errors.Is(err, form.ErrEditedDuringGeneration):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	var validationErr *form.ValidationError
	if errors.As(err, &validationErr) {
		entry, _ := s.sessions.get(r.PathValue("id"))
		var formSchema model.FormSchema
		if entry != nil {
			formSchema = entry.form.Schema()
		}
		mapping := render.MapValidationError(formSchema, validationErr)
		writeJSON(w, status, validationResponse{
			Error:      "validation failed",
			Errors:     mapping.Fields,
			FormErrors: mapping.Form,
			Issues:     validationErr.Issues,
		})
		return
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("formapi request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("formapi request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(value)
}

func decodeBody(r *http.Request, target any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("formapi: decode body: %w", err)}
	}
	return nil
}

func decodeOptionalBody(r *http.Request, target any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := decodeBody(r, target)
	var status StatusError
	if errors.As(err, &status) && errors.Is(status.Err, io.EOF) {
		return nil
	}
	return err
}
