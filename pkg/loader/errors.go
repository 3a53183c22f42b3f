package loader

import "fmt"

// ParseError locates a problem in a workflow document.
type ParseError struct {
	// Path is the dotted location, e.g. "states.cart.on.CANCEL".
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
