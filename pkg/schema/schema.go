package schema

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Schema maps context keys to their expected types.
type Schema map[string]Type

// Parse builds a schema from type names.
func Parse(names map[string]string) (Schema, error) {
	s := make(Schema, len(names))
	for key, name := range names {
		t, err := ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		s[key] = t
	}
	return s, nil
}

// Keys returns the declared keys in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Validate checks values against the schema. Keys absent from the schema are
// allowed. Failures are reported in key order.
func (s Schema) Validate(values map[string]any) error {
	var errs []error
	for _, key := range s.Keys() {
		t := s[key]
		value, ok := values[key]
		if !ok {
			if !IsOptional(t) {
				errs = append(errs, &FieldError{Key: key, Reason: "required"})
			}
			continue
		}
		if err := t.Validate(value); err != nil {
			errs = append(errs, &FieldError{Key: key, Reason: err.Error(), Value: value})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateContext checks a workflow context.
func (s Schema) ValidateContext(c domain.Context) error {
	return s.Validate(c.Values())
}

func (s Schema) names() map[string]string {
	out := make(map[string]string, len(s))
	for k, t := range s {
		out[k] = t.Name()
	}
	return out
}

// String renders the schema as "key: type" pairs in key order.
func (s Schema) String() string {
	parts := make([]string, 0, len(s))
	for _, k := range s.Keys() {
		parts = append(parts, k+": "+s[k].Name())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON writes the schema as a map of type names.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.names())
}

// UnmarshalJSON reads a map of type names.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var names map[string]string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("schema must map keys to type names: %w", err)
	}
	return s.set(names)
}

// UnmarshalYAML reads a mapping of type names.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	var names map[string]string
	if err := node.Decode(&names); err != nil {
		return fmt.Errorf("schema must map keys to type names: %w", err)
	}
	return s.set(names)
}

func (s *Schema) set(names map[string]string) error {
	if names == nil {
		*s = nil
		return nil
	}
	parsed, err := Parse(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
