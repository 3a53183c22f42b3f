package loader

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"gopkg.in/yaml.v3"
)

const payloadPrefix = "payload."

var operators = []string{"==", "!=", "<=", ">=", "<", ">"}

// condition is a compiled "<key> <op> <literal>" guard.
type condition struct {
	key     string
	payload bool
	op      string
	literal any
}

// parseCondition compiles expr. The literal is read as a YAML scalar, so
// 3, 2.5, true, null and 'text' all keep their natural types.
func parseCondition(expr string) (*condition, error) {
	for _, op := range operators {
		left, right, ok := strings.Cut(expr, " "+op+" ")
		if !ok {
			continue
		}
		key := strings.TrimSpace(left)
		if key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("invalid condition key %q", key)
		}
		var literal any
		if err := yaml.Unmarshal([]byte(strings.TrimSpace(right)), &literal); err != nil {
			return nil, fmt.Errorf("invalid condition literal %q: %w", right, err)
		}
		c := &condition{key: key, op: op, literal: literal}
		if rest, ok := strings.CutPrefix(key, payloadPrefix); ok {
			c.key, c.payload = rest, true
		}
		return c, nil
	}
	return nil, fmt.Errorf("%q is neither a registered guard nor a condition like \"count < 3\"", expr)
}

func (c *condition) lookup(ctx domain.Context, ev domain.Event) (any, bool) {
	if !c.payload {
		return ctx.Get(c.key)
	}
	m, ok := domain.PayloadAs[map[string]any](ev)
	if !ok {
		return nil, false
	}
	v, ok := m[c.key]
	return v, ok
}

// Check evaluates the condition. Missing keys compare as nil; ordering
// operators are false unless both sides are numbers or both are strings.
func (c *condition) Check(ctx domain.Context, ev domain.Event) bool {
	v, _ := c.lookup(ctx, ev)
	switch c.op {
	case "==":
		return equal(v, c.literal)
	case "!=":
		return !equal(v, c.literal)
	}
	cmp, ok := compare(v, c.literal)
	if !ok {
		return false
	}
	switch c.op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	default:
		return cmp >= 0
	}
}

func equal(a, b any) bool {
	if x, ok := number(a); ok {
		y, ok := number(b)
		return ok && x == y
	}
	return reflect.DeepEqual(a, b)
}

func compare(a, b any) (int, bool) {
	if x, ok := number(a); ok {
		y, ok := number(b)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	x, ok1 := a.(string)
	y, ok2 := b.(string)
	if !ok1 || !ok2 {
		return 0, false
	}
	return strings.Compare(x, y), true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
