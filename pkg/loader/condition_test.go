package loader

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondition(t *testing.T) {
	ctx := domain.NewContext(map[string]any{"n": 2, "name": "bob", "ok": true, "f": float64(2)})
	tests := []struct {
		expr string
		want bool
	}{
		{"n < 3", true},
		{"n <= 2", true},
		{"n > 2", false},
		{"n >= 2.0", true},
		{"f == 2", true},
		{"n != 2", false},
		{"name == bob", true},
		{"name == 'bob'", true},
		{"name < carl", true},
		{"ok == true", true},
		{"missing == null", true},
		{"missing < 3", false},
		{"name < 3", false},
		{"payload.amount > 5", true},
		{"payload.absent != null", false},
	}
	ev := domain.NewEvent("PAY", map[string]any{"amount": 6})
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			c, err := parseCondition(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Check(ctx, ev))
		})
	}
}

func TestCondition_PayloadWithoutMap(t *testing.T) {
	c, err := parseCondition("payload.amount > 5")
	require.NoError(t, err)
	assert.False(t, c.Check(domain.Context{}, domain.NewEvent("PAY", 9)))
}

func TestCondition_Invalid(t *testing.T) {
	for _, expr := range []string{"n<3", "isReady", " < 3", "a b < 3"} {
		_, err := parseCondition(expr)
		assert.Error(t, err, expr)
	}
}
