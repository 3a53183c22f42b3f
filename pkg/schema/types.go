package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Type validates a single value.
type Type interface {
	// Name is the type as written in a document, e.g. "int" or "[string]".
	Name() string
	Validate(value any) error
}

type scalar struct {
	name   string
	accept func(any) bool
}

func (t scalar) Name() string { return t.name }

func (t scalar) Validate(value any) error {
	if !t.accept(value) {
		return fmt.Errorf("expected %s, got %T", t.name, value)
	}
	return nil
}

func isInt(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		// JSON numbers decode as float64.
		return n == float64(int64(n))
	}
	return false
}

func isFloat(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return isInt(v)
}

var scalars = map[string]Type{
	"string": scalar{"string", func(v any) bool { _, ok := v.(string); return ok }},
	"int":    scalar{"int", isInt},
	"float":  scalar{"float", isFloat},
	"bool":   scalar{"bool", func(v any) bool { _, ok := v.(bool); return ok }},
	"any":    scalar{"any", func(any) bool { return true }},
}

// String accepts strings.
func String() Type { return scalars["string"] }

// Int accepts integers and whole floats.
func Int() Type { return scalars["int"] }

// Float accepts any number.
func Float() Type { return scalars["float"] }

// Bool accepts booleans.
func Bool() Type { return scalars["bool"] }

// Any accepts every value, including nil.
func Any() Type { return scalars["any"] }

type sliceType struct{ elem Type }

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fmt.Errorf("expected %s, got %T", t.Name(), value)
	}
	for i := range rv.Len() {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Slice accepts slices whose every element is elem.
func Slice(elem Type) Type { return sliceType{elem: elem} }

type optional struct{ Type }

func (t optional) Name() string { return t.Type.Name() + "?" }

func (t optional) Validate(value any) error {
	if value == nil {
		return nil
	}
	return t.Type.Validate(value)
}

// Optional makes a key of t allowed to be absent or nil.
func Optional(t Type) Type { return optional{t} }

// IsOptional reports whether t was wrapped by Optional.
func IsOptional(t Type) bool {
	_, ok := t.(optional)
	return ok
}

type custom struct {
	name     string
	validate func(any) error
}

func (t custom) Name() string { return t.name }

func (t custom) Validate(value any) error { return t.validate(value) }

// Custom builds a type from a validation func.
func Custom(name string, validate func(any) error) Type {
	return custom{name: name, validate: validate}
}

// ParseType reads a type name: string, int, float, bool, any, [T] or T?.
func ParseType(name string) (Type, error) {
	name = strings.TrimSpace(name)
	if inner, ok := strings.CutSuffix(name, "?"); ok {
		t, err := ParseType(inner)
		if err != nil {
			return nil, err
		}
		return Optional(t), nil
	}
	if len(name) > 2 && name[0] == '[' && name[len(name)-1] == ']' {
		elem, err := ParseType(name[1 : len(name)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}
	if t, ok := scalars[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unsupported type %q", name)
}
