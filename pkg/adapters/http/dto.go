package http

import "github.com/aretw0/waypoint/pkg/domain"

// SessionResponse is the state of one session.
type SessionResponse struct {
	ID       string          `json:"id"`
	Snapshot domain.Snapshot `json:"snapshot"`
	// Pending is the src of the running invocation, if any.
	Pending string `json:"pending,omitempty"`
}

// EventRequest carries an external event.
type EventRequest struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// ResolveRequest completes an invocation with Data.
type ResolveRequest struct {
	Data any `json:"data,omitempty"`
}

// RejectRequest fails an invocation with Error.
type RejectRequest struct {
	Error string `json:"error"`
}

// DefinitionResponse summarizes the hosted workflow.
type DefinitionResponse struct {
	ID          string                 `json:"id"`
	Initial     string                 `json:"initial"`
	States      []string               `json:"states"`
	Events      []string               `json:"events"`
	Invocations []string               `json:"invocations,omitempty"`
	Transitions []domain.TransitionKey `json:"transitions"`
}

type errorResponse struct {
	Error string `json:"error"`
}
