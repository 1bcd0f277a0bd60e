package quickfill

import (
	"context"
	"time"

	"github.com/goliatone/go-contentforms/pkg/model"
)

// Mock simulates a generation backend: it waits for a fixed delay and returns
// the canned dataset of the requesting form. The result never depends on the
// subject and the call only fails when ctx is cancelled.
type Mock struct {
	delay    time.Duration
	delaySet bool
	after    func(time.Duration) <-chan time.Time
	datasets map[string]model.Dataset
}

// MockOption configures a Mock.
type MockOption func(*Mock)

// WithDelay overrides the per-form delay declared in the schema.
func WithDelay(delay time.Duration) MockOption {
	return func(m *Mock) {
		if delay < 0 {
			delay = 0
		}
		m.delay = delay
		m.delaySet = true
	}
}

// WithAfter replaces time.After, letting tests control when the delay elapses.
func WithAfter(after func(time.Duration) <-chan time.Time) MockOption {
	return func(m *Mock) {
		if after != nil {
			m.after = after
		}
	}
}

// WithDataset pins the dataset returned for formID instead of the schema's
// canned dataset.
func WithDataset(formID string, dataset model.Dataset) MockOption {
	return func(m *Mock) {
		if m.datasets == nil {
			m.datasets = make(map[string]model.Dataset)
		}
		m.datasets[formID] = dataset.Clone()
	}
}

// NewMock constructs a mock generator.
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{after: time.After}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

// Generate waits for the configured delay and returns the canned dataset.
func (m *Mock) Generate(ctx context.Context, req Request) (model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return model.Dataset{}, err
	}

	delay := m.delay
	if !m.delaySet {
		delay = req.Schema.QuickFill.Delay
		if delay <= 0 {
			delay = model.DefaultQuickFillDelay
		}
	}
	if delay > 0 {
		select {
		case <-ctx.Done():
			return model.Dataset{}, ctx.Err()
		case <-m.after(delay):
		}
	}

	if dataset, ok := m.datasets[req.FormID]; ok {
		return dataset.Clone(), nil
	}
	return req.Schema.QuickFill.Dataset.Clone(), nil
}
