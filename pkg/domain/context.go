package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Patch is a partial context produced by an Action.
// It is shallow-merged into the current Context to produce the next one.
type Patch map[string]any

// Context is the immutable extended state carried alongside the current state.
// Every update returns a new Context; the receiver is never modified.
type Context struct {
	values map[string]any
}

// NewContext copies values into a fresh Context.
func NewContext(values map[string]any) Context {
	if len(values) == 0 {
		return Context{}
	}
	return Context{values: maps.Clone(values)}
}

// Get returns the value stored under key.
func (c Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Int reads key as an integer, accepting the numeric types YAML and JSON produce.
// Missing keys read as zero.
func (c Context) Int(key string) int {
	v, ok := c.values[key]
	if !ok {
		return 0
	}
	n, _ := toInt(v)
	return n
}

// Len returns the number of keys.
func (c Context) Len() int { return len(c.values) }

// Keys returns the keys in sorted order.
func (c Context) Keys() []string {
	return slices.Sorted(maps.Keys(c.values))
}

// Values returns a copy of the underlying map. Mutating it does not affect c.
func (c Context) Values() map[string]any {
	if c.values == nil {
		return map[string]any{}
	}
	return maps.Clone(c.values)
}

// Merge returns a new Context with patch shallow-merged over c.
func (c Context) Merge(patch Patch) Context {
	if len(patch) == 0 {
		return c
	}
	next := make(map[string]any, len(c.values)+len(patch))
	maps.Copy(next, c.values)
	maps.Copy(next, patch)
	return Context{values: next}
}

// With is a convenience for merging a single key.
func (c Context) With(key string, value any) Context {
	return c.Merge(Patch{key: value})
}

// MarshalJSON encodes the context with sorted keys, which makes the encoding
// canonical and usable as part of a node identity.
func (c Context) MarshalJSON() ([]byte, error) {
	if c.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.values)
}

// UnmarshalJSON decodes a JSON object into a fresh Context.
func (c *Context) UnmarshalJSON(data []byte) error {
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	c.values = values
	return nil
}

// String renders the canonical JSON form.
func (c Context) String() string {
	b, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", c.values)
	}
	return string(b)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}
