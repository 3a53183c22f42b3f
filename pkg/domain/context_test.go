package domain_test

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestContext_MergeIsImmutable(t *testing.T) {
	base := domain.NewContext(map[string]any{"count": 1, "name": "a"})
	next := base.Merge(domain.Patch{"count": 2})

	assert.Equal(t, 1, base.Int("count"))
	assert.Equal(t, 2, next.Int("count"))
	v, _ := next.Get("name")
	assert.Equal(t, "a", v)

	values := next.Values()
	values["count"] = 99
	assert.Equal(t, 2, next.Int("count"), "Values returns a copy")
}

func TestContext_IntAcceptsDecodedNumbers(t *testing.T) {
	ctx := domain.NewContext(map[string]any{"f": float64(3), "i64": int64(4)})
	assert.Equal(t, 3, ctx.Int("f"))
	assert.Equal(t, 4, ctx.Int("i64"))
	assert.Equal(t, 0, ctx.Int("missing"))
}

func TestSnapshot_KeyIsCanonical(t *testing.T) {
	a := domain.Snapshot{State: "s", Context: domain.NewContext(map[string]any{"b": 1, "a": 2})}
	b := domain.Snapshot{State: "s", Context: domain.NewContext(map[string]any{"a": 2, "b": float64(1)})}
	c := domain.Snapshot{State: "s", Context: domain.NewContext(map[string]any{"a": 2, "b": 2})}

	assert.Equal(t, a.Key(), b.Key())
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, `reaches state: "s" ({"a":2,"b":1})`, a.Describe())
}

func TestEvent_Kinds(t *testing.T) {
	done := domain.DoneEvent("submitOrder", "ok")
	assert.Equal(t, "done.invoke.submitOrder", done.Name)
	assert.True(t, done.Synthetic())
	assert.Equal(t, "submitOrder", domain.InvocationSource(done.Name))

	assert.Equal(t, domain.EventError, domain.KindOf("error.platform.submitOrder"))
	assert.Equal(t, domain.EventExternal, domain.KindOf("CANCEL"))
	assert.False(t, domain.NewEvent("CANCEL").Synthetic())

	ev := domain.NewEvent("PAY", 42)
	n, ok := domain.PayloadAs[int](ev)
	assert.True(t, ok)
	assert.Equal(t, 42, n)
	assert.Equal(t, "PAY (42)", ev.Label())
}
