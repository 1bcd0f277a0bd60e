package form

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/quickfill"
)

// SetSubject updates the quick-fill subject input. It is disabled while a
// generation is pending.
func (f *Form) SetSubject(subject string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	if f.fill == FillGenerating {
		return ErrGenerating
	}
	f.subject = subject
	return nil
}

// QuickFill starts a generation for the current subject. A blank subject is a
// no-op reported as started=false. The generation runs in the background and
// replaces the record and all lists when it succeeds; closing the form does
// not stop it.
func (f *Form) QuickFill() (bool, error) {
	f.mu.Lock()
	if err := f.mutableLocked(); err != nil {
		f.mu.Unlock()
		return false, err
	}
	if !f.schema.QuickFill.Enabled {
		f.mu.Unlock()
		return false, ErrQuickFillDisabled
	}
	if f.fill == FillGenerating {
		f.mu.Unlock()
		return false, ErrGenerating
	}
	subject := strings.TrimSpace(f.subject)
	if subject == "" {
		f.mu.Unlock()
		return false, nil
	}
	f.startLocked(subject)
	f.mu.Unlock()

	f.notifyFill(FillGenerating, nil)
	return true, nil
}

// Retry reruns the last failed generation with the same subject.
func (f *Form) Retry() error {
	f.mu.Lock()
	if err := f.mutableLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.fill != FillFailed {
		f.mu.Unlock()
		return ErrNotFailed
	}
	f.startLocked(f.lastSubject)
	f.mu.Unlock()

	f.notifyFill(FillGenerating, nil)
	return nil
}

// Wait blocks until the current generation settles or ctx is done. It
// returns immediately when nothing is pending.
func (f *Form) Wait(ctx context.Context) error {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Form) startLocked(subject string) {
	f.token++
	ctx, cancel := context.WithCancel(f.lifetime)
	done := make(chan struct{})

	f.genCancel = cancel
	f.done = done
	f.fill = FillGenerating
	f.fillErr = nil
	f.lastSubject = subject

	req := quickfill.Request{FormID: f.schema.ID, Subject: subject, Schema: f.schema}
	f.cfg.logger.Info("quick-fill started", "form", f.schema.ID, "subject", subject)
	go f.generate(ctx, cancel, f.token, f.revision, req, done)
}

func (f *Form) generate(ctx context.Context, cancel context.CancelFunc, token, revision uint64, req quickfill.Request, done chan struct{}) {
	defer close(done)
	defer cancel()

	dataset, err := f.cfg.generator.Generate(ctx, req)

	f.mu.Lock()
	if f.disposed || token != f.token {
		f.mu.Unlock()
		f.cfg.logger.Debug("quick-fill result dropped", "form", req.FormID, "subject", req.Subject)
		return
	}
	f.genCancel = nil
	switch {
	case err != nil:
		f.fill = FillFailed
		f.fillErr = &GenerationError{Subject: req.Subject, Err: err}
	case f.cfg.editGuard && f.revision != revision:
		f.fill = FillFailed
		f.fillErr = &GenerationError{Subject: req.Subject, Err: ErrEditedDuringGeneration}
	default:
		f.applyLocked(quickfill.Normalize(f.schema, dataset))
		f.fill = FillIdle
		f.fillErr = nil
	}
	state, fillErr := f.fill, f.fillErr
	f.mu.Unlock()

	if fillErr != nil {
		msg := "quick-fill failed"
		if errors.Is(fillErr, ErrEditedDuringGeneration) {
			msg = "quick-fill discarded"
		}
		f.cfg.logger.Warn(msg, "form", req.FormID, "subject", req.Subject, "error", fillErr)
	} else {
		f.cfg.logger.Info("quick-fill applied", "form", req.FormID, "subject", req.Subject)
	}
	f.notifyFill(state, fillErr)
}

func (f *Form) cancelGenerationLocked() {
	if f.genCancel != nil {
		f.genCancel()
		f.genCancel = nil
	}
	f.token++
}

func (f *Form) notifyFill(state FillState, err error) {
	if f.cfg.onFillChange != nil {
		f.cfg.onFillChange(state, err)
	}
}

// Apply replaces the record and lists with dataset after normalising it
// against the schema. It is the synchronous path used when a dataset comes
// from outside the quick-fill generator, for example a saved draft.
func (f *Form) Apply(dataset model.Dataset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	if f.fill == FillGenerating {
		return ErrGenerating
	}
	f.applyLocked(quickfill.Normalize(f.schema, dataset))
	return nil
}
