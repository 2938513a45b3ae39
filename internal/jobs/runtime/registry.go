package runtime

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Handler runs one job type, e.g. the deck render pipeline.
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

var ErrDuplicateHandler = errors.New("job type already has a handler")

// Registry maps job types to their handlers. The runner looks handlers up on
// every submit, so late registration is visible to later submits.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns a registry holding hs.
func NewRegistry(hs ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(hs))}
	for _, h := range hs {
		if err := r.Register(h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(h Handler) error {
	if h == nil {
		return errors.New("nil job handler")
	}
	t := h.Type()
	if t == "" {
		return errors.New("job handler has an empty type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[t]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, t)
	}
	r.handlers[t] = h
	return nil
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}

// Types lists the registered job types in order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
