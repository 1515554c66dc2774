// Package tools holds the registry of functions the model may invoke
// during a live session.
package tools

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownTool is returned by Invoke for names with no registered definition.
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes one tool call. Args come straight from the model; the
// handler validates its own arguments and returns either a JSON-able result
// map or an error. Handlers must honor ctx cancellation for long work.
type Handler func(ctx context.Context, args map[string]any) (map[string]any, error)

// Param describes a single declared parameter.
// Type is one of "string", "boolean", "number", "integer".
type Param struct {
	Type        string
	Description string
}

// Definition declares one tool: its schema as announced to the model and
// the handler that executes it.
type Definition struct {
	Name        string
	Description string
	Params      map[string]Param
	Required    []string
	Handler     Handler
}

// Registry maps tool names to definitions, preserving registration order
// for declaration to the remote connection.
//
// Register all tools before the session starts; Registry is not safe for
// concurrent registration.
type Registry struct {
	defs  map[string]Definition
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a tool definition. Empty names, nil handlers and duplicate
// names are rejected.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("tool definition has empty name")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %q has nil handler", def.Name)
	}
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("tool %q already registered", def.Name)
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// MustRegister registers a batch of definitions and panics on the first
// failure. Intended for session wiring, where a bad definition is a
// programming error.
func (r *Registry) MustRegister(defs ...Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

// Invoke runs the named tool. Unknown names return ErrUnknownTool wrapped
// with the name. A nil args map is normalized to an empty one so handlers
// can index it freely.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return def.Handler(ctx, args)
}

// Definitions returns all registered definitions in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}
