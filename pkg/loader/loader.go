package loader

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/aretw0/waypoint/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Workflow is a loaded document.
type Workflow struct {
	Definition *domain.Definition
	// Schema is the declared contextSchema, nil when the document has none.
	Schema schema.Schema
}

// Option configures loading.
type Option func(*config)

type config struct {
	registry *Registry
	logger   *slog.Logger
}

// WithRegistry resolves guard and action names through r.
func WithRegistry(r *Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type document struct {
	ID            string         `yaml:"id"`
	Initial       string         `yaml:"initial"`
	Context       map[string]any `yaml:"context"`
	ContextSchema schema.Schema  `yaml:"contextSchema"`
	States        yaml.Node      `yaml:"states"`
}

type stateDoc struct {
	On     yaml.Node `yaml:"on"`
	Invoke yaml.Node `yaml:"invoke"`
}

// candidate is one transition object, decoded with mapstructure.
type candidate struct {
	Target  string `mapstructure:"target"`
	Guard   string `mapstructure:"guard"`
	Actions []any  `mapstructure:"actions"`
}

type invokeDoc struct {
	Src     string `mapstructure:"src"`
	OnDone  any    `mapstructure:"onDone"`
	OnError any    `mapstructure:"onError"`
}

// LoadFile reads and parses the document at path.
func LoadFile(path string, opts ...Option) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow: %w", err)
	}
	return Load(data, opts...)
}

// Load parses a workflow document. Structural problems of the resulting
// workflow are reported as *domain.DefinitionError, document problems as
// *ParseError, and initial context mismatches as *schema.AggregateError.
func Load(data []byte, opts ...Option) (*Workflow, error) {
	cfg := &config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: "document", Err: err}
	}

	b := dsl.New(doc.ID).Initial(doc.Initial)
	for k, v := range doc.Context {
		b.Context(k, v)
	}

	if err := cfg.states(b, doc.ID, &doc.States); err != nil {
		return nil, err
	}

	def, err := b.Build()
	if err != nil {
		return nil, err
	}
	if doc.ContextSchema != nil {
		if err := doc.ContextSchema.ValidateContext(def.InitialContext()); err != nil {
			return nil, fmt.Errorf("initial context of %q: %w", def.ID(), err)
		}
	}

	cfg.logger.Debug("workflow loaded", "id", def.ID(), "states", len(def.StateIDs()), "transitions", len(def.Transitions()))
	return &Workflow{Definition: def, Schema: doc.ContextSchema}, nil
}

func (c *config) states(b *dsl.Builder, workflow string, node *yaml.Node) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return &ParseError{Path: "states", Line: node.Line, Err: fmt.Errorf("must be a mapping of state names")}
	}
	seen := make(map[string]int, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, body := node.Content[i], node.Content[i+1]
		id, path := key.Value, "states."+key.Value
		if first, ok := seen[id]; ok {
			return &ParseError{Path: path, Line: key.Line, Err: &domain.DefinitionError{
				ID: workflow,
				Issues: []domain.DefinitionIssue{{
					Code:    domain.IssueDuplicateState,
					State:   id,
					Message: fmt.Sprintf("state %q is declared again (first on line %d)", id, first),
				}},
			}}
		}
		seen[id] = key.Line

		var sd stateDoc
		if body.Kind != yaml.ScalarNode || body.Tag != "!!null" {
			if err := body.Decode(&sd); err != nil {
				return &ParseError{Path: path, Line: body.Line, Err: err}
			}
		}

		sb := b.State(id)
		if sd.Invoke.Kind != 0 {
			if err := c.invoke(sb, path+".invoke", &sd.Invoke); err != nil {
				return err
			}
		}
		if err := c.on(sb, path+".on", &sd.On); err != nil {
			return err
		}
	}
	return nil
}

func (c *config) invoke(sb *dsl.StateBuilder, path string, node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return &ParseError{Path: path, Line: node.Line, Err: err}
	}
	var inv invokeDoc
	if src, ok := raw.(string); ok {
		inv.Src = src
	} else if err := decodeStrict(raw, &inv); err != nil {
		return &ParseError{Path: path, Line: node.Line, Err: err}
	}
	if inv.Src == "" {
		return &ParseError{Path: path, Line: node.Line, Err: fmt.Errorf("src is required")}
	}

	sb.Invoke(inv.Src)
	if inv.OnDone != nil {
		if err := c.candidates(sb, domain.DoneEventName(inv.Src), path+".onDone", node.Line, inv.OnDone); err != nil {
			return err
		}
	}
	if inv.OnError != nil {
		if err := c.candidates(sb, domain.ErrorEventName(inv.Src), path+".onError", node.Line, inv.OnError); err != nil {
			return err
		}
	}
	return nil
}

func (c *config) on(sb *dsl.StateBuilder, path string, node *yaml.Node) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return &ParseError{Path: path, Line: node.Line, Err: fmt.Errorf("must be a mapping of event names")}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		event, value := node.Content[i].Value, node.Content[i+1]
		var raw any
		if err := value.Decode(&raw); err != nil {
			return &ParseError{Path: path + "." + event, Line: value.Line, Err: err}
		}
		if err := c.candidates(sb, event, path+"."+event, value.Line, raw); err != nil {
			return err
		}
	}
	return nil
}

// candidates adds the transitions for event described by raw: a target name,
// a candidate object or a list of either.
func (c *config) candidates(sb *dsl.StateBuilder, event, path string, line int, raw any) error {
	items, ok := raw.([]any)
	if !ok {
		items = []any{raw}
	}
	for i, item := range items {
		at := path
		if len(items) > 1 {
			at = fmt.Sprintf("%s[%d]", path, i)
		}

		var cand candidate
		switch v := item.(type) {
		case string:
			cand.Target = v
		case map[string]any:
			if err := decodeStrict(v, &cand); err != nil {
				return &ParseError{Path: at, Line: line, Err: err}
			}
		default:
			return &ParseError{Path: at, Line: line, Err: fmt.Errorf("invalid transition of type %T", item)}
		}

		opts, err := c.options(cand)
		if err != nil {
			return &ParseError{Path: at, Line: line, Err: err}
		}
		sb.On(event, cand.Target, opts...)
	}
	return nil
}

func (c *config) options(cand candidate) ([]dsl.TransitionOption, error) {
	var opts []dsl.TransitionOption
	if cand.Guard != "" {
		if fn, ok := c.registry.guard(cand.Guard); ok {
			opts = append(opts, dsl.When(cand.Guard, fn))
		} else {
			cond, err := parseCondition(cand.Guard)
			if err != nil {
				return nil, err
			}
			opts = append(opts, dsl.When(cand.Guard, cond.Check))
		}
	}
	for i, a := range cand.Actions {
		opt, err := c.action(a)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

func (c *config) action(raw any) (dsl.TransitionOption, error) {
	switch v := raw.(type) {
	case string:
		fn, ok := c.registry.action(v)
		if !ok {
			return nil, fmt.Errorf("unknown action %q", v)
		}
		return dsl.Do(v, fn), nil
	case map[string]any:
		if len(v) != 1 {
			return nil, fmt.Errorf("an action object has exactly one of increment, decrement or set")
		}
		for kind, arg := range v {
			switch kind {
			case "increment", "decrement":
				key, ok := arg.(string)
				if !ok || key == "" {
					return nil, fmt.Errorf("%s takes a context key", kind)
				}
				if kind == "increment" {
					return dsl.Increment(key), nil
				}
				return dsl.Decrement(key), nil
			case "set":
				values, ok := arg.(map[string]any)
				if !ok || len(values) == 0 {
					return nil, fmt.Errorf("set takes a mapping of context keys to values")
				}
				return set(values), nil
			default:
				return nil, fmt.Errorf("unknown built-in action %q", kind)
			}
		}
	}
	return nil, fmt.Errorf("invalid action of type %T", raw)
}

func set(values map[string]any) dsl.TransitionOption {
	if len(values) == 1 {
		for k, v := range values {
			return dsl.Set(k, v)
		}
	}
	patch := make(domain.Patch, len(values))
	parts := make([]string, 0, len(values))
	for k, v := range values {
		patch[k] = v
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	slices.Sort(parts)
	return dsl.Do("set("+strings.Join(parts, ", ")+")", func(domain.Context, domain.Event) domain.Patch {
		return patch
	})
}

func decodeStrict(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
