// Package report renders plans and run reports for the terminal.
package report

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown for the terminal.
// When rich is false, or the renderer cannot be built, markdown is returned as is.
func NewRenderer(rich bool) func(string) (string, error) {
	if !rich {
		return func(md string) (string, error) { return md, nil }
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return func(md string) (string, error) { return md, nil }
	}
	return r.Render
}
