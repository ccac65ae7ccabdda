package script

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

var ErrUnknownHandler = errors.New("script: unknown handler")

// Handler reacts to one event on one prop.
type Handler interface {
	Handle(ctx *Context) error
}

type HandlerFunc func(ctx *Context) error

func (f HandlerFunc) Handle(ctx *Context) error {
	return f(ctx)
}

// Loader returns the source of a named script.
type Loader func(name string) ([]byte, error)

// DefaultTimeout bounds a single tengo handler run.
const DefaultTimeout = 250 * time.Millisecond

// Registry maps handler identifiers to handlers. Go handlers are
// registered explicitly; any other identifier is loaded and compiled as a
// tengo script on first use.
type Registry struct {
	handlers map[string]Handler
	compiled map[string]*tengoHandler
	loader   Loader
	Timeout  time.Duration
}

func NewRegistry(loader Loader) *Registry {
	return &Registry{
		handlers: map[string]Handler{},
		compiled: map[string]*tengoHandler{},
		loader:   loader,
		Timeout:  DefaultTimeout,
	}
}

func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

func (r *Registry) RegisterFunc(name string, fn func(ctx *Context) error) {
	r.Register(name, HandlerFunc(fn))
}

// Resolve returns the handler for name, compiling it if needed.
func (r *Registry) Resolve(name string) (Handler, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("script: resolve: empty name: %w", ErrUnknownHandler)
	}
	if h, ok := r.handlers[name]; ok {
		return h, nil
	}
	if h, ok := r.compiled[name]; ok {
		return h, nil
	}
	if r.loader == nil {
		return nil, fmt.Errorf("script: resolve %q: %w", name, ErrUnknownHandler)
	}
	src, err := r.loader(name)
	if err != nil {
		return nil, fmt.Errorf("script: resolve %q: %w: %w", name, ErrUnknownHandler, err)
	}
	h, err := compileTengo(name, src, r.Timeout)
	if err != nil {
		return nil, fmt.Errorf("script: compile %q: %w", name, err)
	}
	r.compiled[name] = h
	return h, nil
}

// Invalidate drops cached compiles whose file name matches name, so the
// next dispatch reloads the source.
func (r *Registry) Invalidate(name string) int {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	dropped := 0
	for key := range r.compiled {
		if key == name || path.Base(key) == base {
			delete(r.compiled, key)
			dropped++
		}
	}
	return dropped
}

// InvalidateAll empties the compile cache and reports how many scripts
// were dropped.
func (r *Registry) InvalidateAll() int {
	n := len(r.compiled)
	clear(r.compiled)
	return n
}

// Cached reports whether name has a compiled script in the cache.
func (r *Registry) Cached(name string) bool {
	_, ok := r.compiled[name]
	return ok
}
