package formapi

import (
	"fmt"
	"net/http"
)

// Component owns one session store and the routes that drive it. Unlike the
// bare handlers, a component can be closed to dispose its live forms.
type Component struct {
	opts   Options
	server *server
}

// New constructs a component with default options plus any overrides.
func New(fns ...OptionFn) (*Component, error) {
	opts := NewOptions(fns...)
	srv, err := newServer(opts)
	if err != nil {
		return nil, err
	}
	return &Component{opts: opts, server: srv}, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns the component's net/http handler. Routes are relative to
// the handler root.
func (c *Component) Handler() http.Handler {
	return c.server
}

// Sessions reports the number of live sessions.
func (c *Component) Sessions() int {
	return c.server.sessions.len()
}

// RegisterRoutes registers the component handler under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("formapi: missing mux")
	}
	return mount(mux, mountPath(basePath, c.opts.RoutePath), c.server), nil
}

// Close disposes every live session.
func (c *Component) Close() {
	if c == nil || c.server == nil {
		return
	}
	c.server.Close()
}
