// Package action provides the in-process registry of custom automation
// handlers.
package action

import (
	"context"
	"fmt"
	"sync"

	"github.com/settatam/statusflow/internal/domain"
)

// Func is a custom automation handler. It receives the entity the
// automation fired for and the dispatch context snapshot.
type Func func(ctx context.Context, entity domain.Statusable, context map[string]any) error

// Registry maps action keys to handlers and implements
// domain.CustomActionExecutor. Handlers are registered at wiring time;
// lookups at dispatch time take a read lock only.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Func
}

var _ domain.CustomActionExecutor = (*Registry)(nil)

// NewRegistry returns an empty Registry ready for Register calls.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Func)}
}

// Register installs a handler for an action key, replacing any previous one.
func (r *Registry) Register(action string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[action] = fn
}

// Execute runs the handler registered for action. An unregistered key is an
// error so misconfigured automations surface in dispatch results instead of
// silently succeeding.
func (r *Registry) Execute(ctx context.Context, action string, entity domain.Statusable, context map[string]any) error {
	r.mu.RLock()
	fn, ok := r.handlers[action]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no handler registered for action %q", action)
	}
	return fn(ctx, entity, context)
}
