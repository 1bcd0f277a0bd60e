package form

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-contentforms/pkg/model"
)

// Key names accepted by KeyDown.
const (
	KeyEnter = "Enter"
)

// AddResult is the synchronous validity signal returned by Add. When Added is
// false, Missing lists the required sub-fields that were blank and nothing
// changed.
type AddResult struct {
	Added   bool     `json:"added"`
	Index   int      `json:"index"`
	Missing []string `json:"missing,omitempty"`
}

// KeyResult reports how KeyDown handled a key press. SuppressDefault is set
// when the host must not run the key's default action (a surrounding form
// submit for Enter on a scalar list input).
type KeyResult struct {
	Handled         bool      `json:"handled"`
	SuppressDefault bool      `json:"suppressDefault"`
	Add             AddResult `json:"add"`
}

// Form is one live instance of a content form.
type Form struct {
	mu     sync.Mutex
	schema model.FormSchema
	cfg    config

	open       bool
	submitting bool
	record     Record
	lists      map[string]List[Item]
	staging    map[string]map[string]string
	subject    string

	fill        FillState
	fillErr     error
	lastSubject string
	revision    uint64
	token       uint64
	genCancel   context.CancelFunc
	done        chan struct{}

	lifetime context.Context
	stop     context.CancelFunc
	disposed bool
}

// New creates a form for schema with default record values and empty lists.
func New(schema model.FormSchema, opts ...Option) (*Form, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	lifetime, stop := context.WithCancel(context.Background())
	f := &Form{
		schema:   schema,
		cfg:      cfg,
		open:     cfg.open,
		fill:     FillIdle,
		lifetime: lifetime,
		stop:     stop,
	}
	f.resetLocked()
	return f, nil
}

// Schema returns the schema the form was built from.
func (f *Form) Schema() model.FormSchema {
	return f.schema
}

// ID returns the schema identifier.
func (f *Form) ID() string {
	return f.schema.ID
}

// IsOpen reports the current visibility.
func (f *Form) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// SetOpen changes visibility. Opening a closed form resets it first when
// WithResetOnOpen is enabled.
func (f *Form) SetOpen(open bool) error {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return ErrDisposed
	}
	reset := open && !f.open && f.cfg.resetOnOpen
	if reset {
		f.cancelGenerationLocked()
		f.resetLocked()
	}
	f.open = open
	f.mu.Unlock()

	f.cfg.logger.Debug("form visibility changed", "form", f.schema.ID, "open", open, "reset", reset)
	return nil
}

// Reset restores default record values, empties every list, clears staging
// inputs and the subject, and abandons any pending quick-fill.
func (f *Form) Reset() error {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return ErrDisposed
	}
	f.cancelGenerationLocked()
	f.resetLocked()
	f.mu.Unlock()
	return nil
}

// SetField replaces a record field value.
func (f *Form) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	if !f.record.Has(name) {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.record = f.record.with(name, value)
	f.revision++
	return nil
}

// Stage sets the staging input of a list sub-field.
func (f *Form) Stage(list, field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	spec, err := f.listLocked(list)
	if err != nil {
		return err
	}
	if _, ok := spec.Field(field); !ok {
		return fmt.Errorf("%w: %q in list %q", ErrUnknownField, field, list)
	}
	f.staging[list][field] = value
	return nil
}

// Add appends the staged item to list when every required sub-field is
// non-blank after trimming, then clears the staging inputs. Otherwise the
// form is left untouched and the result says which sub-fields were missing.
func (f *Form) Add(list string) (AddResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(list)
}

func (f *Form) addLocked(list string) (AddResult, error) {
	if err := f.mutableLocked(); err != nil {
		return AddResult{}, err
	}
	spec, err := f.listLocked(list)
	if err != nil {
		return AddResult{}, err
	}

	staged := f.staging[list]
	values := make(map[string]string, len(spec.Fields))
	var missing []string
	for _, field := range spec.Fields {
		value := strings.TrimSpace(staged[field.Name])
		if field.Required && value == "" {
			missing = append(missing, field.Name)
			continue
		}
		values[field.Name] = value
	}
	if len(missing) > 0 {
		f.cfg.logger.Debug("list item rejected", "form", f.schema.ID, "list", list, "missing", missing)
		return AddResult{Index: -1, Missing: missing}, nil
	}

	next := f.lists[list].Append(newItem(spec, values))
	f.lists[list] = next
	f.staging[list] = make(map[string]string, len(spec.Fields))
	f.revision++
	return AddResult{Added: true, Index: next.Len() - 1}, nil
}

// KeyDown routes a key press from a list's staging input. Enter on a scalar
// list behaves like Add and suppresses the default action; every other key,
// and Enter on composite lists, is left to the host.
func (f *Form) KeyDown(list, key string) (KeyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	spec, err := f.listLocked(list)
	if err != nil {
		return KeyResult{}, err
	}
	if key != KeyEnter || spec.Shape != model.ItemShapeScalar {
		return KeyResult{}, nil
	}
	res, err := f.addLocked(list)
	if err != nil {
		return KeyResult{}, err
	}
	return KeyResult{Handled: true, SuppressDefault: true, Add: res}, nil
}

// Remove deletes the item at index. It reports false for an out of range
// index, in which case nothing changes.
func (f *Form) Remove(list string, index int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return false, err
	}
	if _, err := f.listLocked(list); err != nil {
		return false, err
	}
	next, ok := f.lists[list].RemoveAt(index)
	if !ok {
		return false, nil
	}
	f.lists[list] = next
	f.revision++
	return true, nil
}

// Submit checks required record fields, runs the optional validator, then
// hands the payload to the submit callback exactly once and requests close.
// A failed check returns *ValidationError and leaves the form open. A Submit
// racing one already in flight returns ErrSubmitting.
func (f *Form) Submit() (Payload, error) {
	f.mu.Lock()
	if err := f.mutableLocked(); err != nil {
		f.mu.Unlock()
		return Payload{}, err
	}
	if f.submitting {
		f.mu.Unlock()
		return Payload{}, ErrSubmitting
	}
	f.submitting = true
	defer f.endSubmit()

	var issues []FieldIssue
	for _, field := range f.schema.Fields {
		if field.Required && strings.TrimSpace(f.record.Get(field.Name)) == "" {
			issues = append(issues, FieldIssue{Field: field.Name, Message: "is required"})
		}
	}
	payload := buildPayload(f.schema, f.record, f.lists)
	f.mu.Unlock()

	if f.cfg.validator != nil {
		issues = append(issues, f.cfg.validator.Validate(f.schema, payload)...)
	}
	if len(issues) > 0 {
		f.cfg.logger.Debug("form submission rejected", "form", f.schema.ID, "issues", len(issues))
		return Payload{}, &ValidationError{Issues: issues}
	}

	if f.cfg.onSubmit != nil {
		f.cfg.onSubmit(payload)
	}
	f.cfg.logger.Info("form submitted", "form", f.schema.ID)
	f.requestClose()
	return payload, nil
}

// Cancel requests close without producing a submission.
func (f *Form) Cancel() error {
	f.mu.Lock()
	disposed := f.disposed
	f.mu.Unlock()
	if disposed {
		return ErrDisposed
	}
	f.cfg.logger.Debug("form cancelled", "form", f.schema.ID)
	f.requestClose()
	return nil
}

// Snapshot returns a detached copy of the current state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	lists := make(map[string][]Item, len(f.lists))
	for name, list := range f.lists {
		lists[name] = list.Items()
	}
	staging := make(map[string]map[string]string, len(f.staging))
	for name, values := range f.staging {
		copied := make(map[string]string, len(values))
		for key, value := range values {
			copied[key] = value
		}
		staging[name] = copied
	}
	return Snapshot{
		Schema:   f.schema,
		Open:     f.open,
		Record:   f.record,
		Lists:    lists,
		Staging:  staging,
		Subject:  f.subject,
		Fill:     f.fill,
		FillErr:  f.fillErr,
		Revision: f.revision,
	}
}

// Dispose tears the form down: a pending quick-fill is cancelled and its
// completion discarded, and every later operation returns ErrDisposed.
func (f *Form) Dispose() {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return
	}
	f.disposed = true
	f.token++
	f.genCancel = nil
	f.fill = FillIdle
	f.fillErr = nil
	f.mu.Unlock()

	f.stop()
	f.cfg.logger.Debug("form disposed", "form", f.schema.ID)
}

func (f *Form) endSubmit() {
	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
}

func (f *Form) requestClose() {
	if f.cfg.onOpenChange != nil {
		f.cfg.onOpenChange(false)
		return
	}
	_ = f.SetOpen(false)
}

func (f *Form) mutableLocked() error {
	if f.disposed {
		return ErrDisposed
	}
	if !f.open {
		return ErrClosed
	}
	return nil
}

func (f *Form) listLocked(name string) (model.List, error) {
	if f.disposed {
		return model.List{}, ErrDisposed
	}
	spec, ok := f.schema.List(name)
	if !ok {
		return model.List{}, fmt.Errorf("%w: %q", ErrUnknownList, name)
	}
	return spec, nil
}

func (f *Form) resetLocked() {
	f.record = newRecord(f.schema.Fields, nil)
	f.lists = make(map[string]List[Item], len(f.schema.Lists))
	f.staging = make(map[string]map[string]string, len(f.schema.Lists))
	for _, list := range f.schema.Lists {
		f.lists[list.Name] = NewList[Item]()
		f.staging[list.Name] = make(map[string]string, len(list.Fields))
	}
	f.subject = ""
	f.lastSubject = ""
	f.fill = FillIdle
	f.fillErr = nil
	f.revision++
}

// applyLocked replaces the record and every list with a normalised dataset.
func (f *Form) applyLocked(dataset model.Dataset) {
	f.record = newRecord(f.schema.Fields, dataset.Record)
	for _, list := range f.schema.Lists {
		raw := dataset.Lists[list.Name]
		items := make([]Item, 0, len(raw))
		for _, values := range raw {
			items = append(items, newItem(list, values))
		}
		f.lists[list.Name] = NewList(items...)
	}
	f.revision++
}
