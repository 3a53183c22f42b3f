package schema

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is one key that failed validation.
type FieldError struct {
	Key    string
	Reason string
	Value  any
}

func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("context key %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("context key %q: %s (value %v)", e.Key, e.Reason, e.Value)
}

// AggregateError holds every failure of one validation.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err)
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// FieldErrors returns the failing keys of err, or nil when err is not a
// validation failure.
func FieldErrors(err error) []*FieldError {
	var agg *AggregateError
	if !errors.As(err, &agg) {
		return nil
	}
	out := make([]*FieldError, 0, len(agg.Errors))
	for _, e := range agg.Errors {
		var fe *FieldError
		if errors.As(e, &fe) {
			out = append(out, fe)
		}
	}
	return out
}
