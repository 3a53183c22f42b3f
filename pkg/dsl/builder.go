package dsl

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Builder manages the workflow construction.
type Builder struct {
	id      string
	initial string
	context map[string]any
	states  map[string]*StateBuilder
	order   []string
}

// New creates a new workflow builder.
func New(id string) *Builder {
	return &Builder{
		id:      id,
		context: make(map[string]any),
		states:  make(map[string]*StateBuilder),
	}
}

// Initial sets the initial state. When unset, the first declared state is used.
func (b *Builder) Initial(state string) *Builder {
	b.initial = state
	return b
}

// Context adds a value to the initial context.
func (b *Builder) Context(key string, value any) *Builder {
	b.context[key] = value
	return b
}

// State declares a state, or returns the existing builder when already declared.
// Declaration order is preserved and drives event enumeration.
func (b *Builder) State(id string) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{state: domain.State{ID: id}, builder: b}
	b.states[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build validates the workflow and freezes it into a domain.Definition.
func (b *Builder) Build() (*domain.Definition, error) {
	states := make([]domain.State, 0, len(b.order))
	for _, id := range b.order {
		states = append(states, b.states[id].Build())
	}

	initial := b.initial
	if initial == "" && len(b.order) > 0 {
		initial = b.order[0]
	}

	def, err := domain.NewDefinition(b.id, initial, domain.NewContext(b.context), states...)
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow: %w", err)
	}
	return def, nil
}

// MustBuild is Build for package-level fixtures; it panics on an invalid workflow.
func (b *Builder) MustBuild() *domain.Definition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
