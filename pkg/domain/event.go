package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvocationFailed is the error carried by an enumerated error.platform event
// that has no explicit case.
var ErrInvocationFailed = errors.New("invocation failed")

// EventKind tags the origin of an Event.
type EventKind string

const (
	// EventExternal is sent by the outside world (user, test, API client).
	EventExternal EventKind = "external"
	// EventDone is synthesized when an invocation resolves.
	EventDone EventKind = "done"
	// EventError is synthesized when an invocation rejects.
	EventError EventKind = "error"
)

const (
	donePrefix  = "done.invoke."
	errorPrefix = "error.platform."
)

// Event is a named signal with an optional payload.
type Event struct {
	Name    string    `json:"name"`
	Kind    EventKind `json:"kind,omitempty"`
	Payload any       `json:"payload,omitempty"`
	// Err is set on EventError events.
	Err error `json:"-"`
}

// NewEvent builds an external event.
func NewEvent(name string, payload ...any) Event {
	ev := Event{Name: name, Kind: EventExternal}
	if len(payload) > 0 {
		ev.Payload = payload[0]
	}
	return ev
}

// DoneEventName is the synthetic event sent when the invocation src resolves.
func DoneEventName(src string) string { return donePrefix + src }

// ErrorEventName is the synthetic event sent when the invocation src rejects.
func ErrorEventName(src string) string { return errorPrefix + src }

// DoneEvent builds the completion event for src carrying the service result.
func DoneEvent(src string, data any) Event {
	return Event{Name: DoneEventName(src), Kind: EventDone, Payload: data}
}

// ErrorEvent builds the failure event for src.
func ErrorEvent(src string, err error) Event {
	return Event{Name: ErrorEventName(src), Kind: EventError, Payload: err, Err: err}
}

// EventFor builds the event named name with payload, tagging synthetic names
// with their kind. For error events an error payload becomes Err; any other
// payload is kept and Err defaults to ErrInvocationFailed. A nil error payload
// is replaced by Err, matching ErrorEvent.
func EventFor(name string, payload any) Event {
	switch KindOf(name) {
	case EventDone:
		return Event{Name: name, Kind: EventDone, Payload: payload}
	case EventError:
		err, ok := payload.(error)
		if !ok {
			err = ErrInvocationFailed
		}
		if payload == nil {
			payload = err
		}
		return Event{Name: name, Kind: EventError, Payload: payload, Err: err}
	default:
		return Event{Name: name, Kind: EventExternal, Payload: payload}
	}
}

// KindOf classifies an event name.
func KindOf(name string) EventKind {
	switch {
	case strings.HasPrefix(name, donePrefix):
		return EventDone
	case strings.HasPrefix(name, errorPrefix):
		return EventError
	default:
		return EventExternal
	}
}

// InvocationSource returns the src of a synthetic event name, or "" for external events.
func InvocationSource(name string) string {
	switch {
	case strings.HasPrefix(name, donePrefix):
		return strings.TrimPrefix(name, donePrefix)
	case strings.HasPrefix(name, errorPrefix):
		return strings.TrimPrefix(name, errorPrefix)
	default:
		return ""
	}
}

// Synthetic reports whether the event was produced by an invocation.
func (e Event) Synthetic() bool {
	k := e.Kind
	if k == "" {
		k = KindOf(e.Name)
	}
	return k == EventDone || k == EventError
}

// Label renders the event for path descriptions. Payloads are appended as JSON.
func (e Event) Label() string {
	if e.Kind == EventError {
		if e.Err == nil || errors.Is(e.Err, ErrInvocationFailed) {
			return e.Name
		}
		return fmt.Sprintf("%s (%q)", e.Name, e.Err.Error())
	}
	if e.Payload == nil {
		return e.Name
	}
	b, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Sprintf("%s (%v)", e.Name, e.Payload)
	}
	return fmt.Sprintf("%s (%s)", e.Name, b)
}

// PayloadAs returns the payload as T when it has that type.
func PayloadAs[T any](e Event) (T, bool) {
	v, ok := e.Payload.(T)
	return v, ok
}
