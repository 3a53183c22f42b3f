package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestEventFor_ErrorMatchesRoutedEvent(t *testing.T) {
	name := domain.ErrorEventName("submitOrder")

	planned := domain.EventFor(name, nil)
	routed := domain.ErrorEvent("submitOrder", domain.ErrInvocationFailed)

	assert.Equal(t, routed.Kind, planned.Kind)
	assert.Equal(t, routed.Payload, planned.Payload)
	assert.ErrorIs(t, planned.Err, domain.ErrInvocationFailed)
	assert.Equal(t, routed.Label(), planned.Label())

	payload, ok := domain.PayloadAs[error](planned)
	assert.True(t, ok, "guards reading the payload see the error in both paths")
	assert.Equal(t, domain.ErrInvocationFailed, payload)
}

func TestEventFor_Kinds(t *testing.T) {
	declined := errors.New("declined")
	tests := []struct {
		name    string
		event   string
		payload any
		kind    domain.EventKind
		err     error
	}{
		{"External", "PLACE_ORDER", 3, domain.EventExternal, nil},
		{"Done", domain.DoneEventName("submitOrder"), "receipt", domain.EventDone, nil},
		{"Error Payload", domain.ErrorEventName("submitOrder"), declined, domain.EventError, declined},
		{"Error Other Payload", domain.ErrorEventName("submitOrder"), "timeout", domain.EventError, domain.ErrInvocationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := domain.EventFor(tt.event, tt.payload)
			assert.Equal(t, tt.kind, ev.Kind)
			assert.Equal(t, tt.payload, ev.Payload)
			if tt.err == nil {
				assert.NoError(t, ev.Err)
			} else {
				assert.ErrorIs(t, ev.Err, tt.err)
			}
		})
	}
}
