package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownState is returned when a snapshot references a state the definition does not declare.
var ErrUnknownState = errors.New("unknown state")

// Issue codes classify each DefinitionIssue.
const (
	IssueEmptyID           = "EMPTY_ID"
	IssueNoStates          = "NO_STATES"
	IssueEmptyStateID      = "EMPTY_STATE_ID"
	IssueDuplicateState    = "DUPLICATE_STATE"
	IssueMissingInitial    = "MISSING_INITIAL"
	IssueInvalidTarget     = "INVALID_TARGET"
	IssueEmptyEvent        = "EMPTY_EVENT"
	IssueInvalidInvocation = "INVALID_INVOCATION"
	IssueSourceMismatch    = "SOURCE_MISMATCH"
)

// DefinitionIssue is a single structural problem in a workflow definition.
type DefinitionIssue struct {
	Code    string
	State   string
	Message string
}

func (i DefinitionIssue) String() string {
	if i.State != "" {
		return fmt.Sprintf("[%s] state %q: %s", i.Code, i.State, i.Message)
	}
	return fmt.Sprintf("[%s] %s", i.Code, i.Message)
}

// DefinitionError is returned when a definition is malformed. It is fatal at construction.
type DefinitionError struct {
	ID     string
	Issues []DefinitionIssue
}

func (e *DefinitionError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("invalid workflow %q: %s", e.ID, e.Issues[0])
	}
	lines := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		lines = append(lines, "  - "+issue.String())
	}
	return fmt.Sprintf("invalid workflow %q: %d issues:\n%s", e.ID, len(e.Issues), strings.Join(lines, "\n"))
}

// Has reports whether an issue with code was recorded.
func (e *DefinitionError) Has(code string) bool {
	for _, issue := range e.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}
