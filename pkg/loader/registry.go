package loader

import "github.com/aretw0/waypoint/pkg/domain"

// Registry resolves guard and action names used in documents to Go code.
// Registration is not safe for concurrent use; fill it before loading.
type Registry struct {
	guards  map[string]domain.GuardFunc
	actions map[string]domain.ActionFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		guards:  make(map[string]domain.GuardFunc),
		actions: make(map[string]domain.ActionFunc),
	}
}

// Guard registers a named guard.
func (r *Registry) Guard(name string, fn domain.GuardFunc) *Registry {
	r.guards[name] = fn
	return r
}

// Action registers a named action.
func (r *Registry) Action(name string, fn domain.ActionFunc) *Registry {
	r.actions[name] = fn
	return r
}

func (r *Registry) guard(name string) (domain.GuardFunc, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.guards[name]
	return fn, ok
}

func (r *Registry) action(name string) (domain.ActionFunc, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.actions[name]
	return fn, ok
}
