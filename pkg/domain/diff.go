package domain

import (
	"reflect"
)

// SnapshotDiff describes what changed between two snapshots.
// It is serialized in HTTP responses and used in step descriptions.
type SnapshotDiff struct {
	// State is set only when the state id changed.
	State *string `json:"state,omitempty"`

	// Context contains changed, added or deleted keys.
	// Deleted keys are present with a nil value.
	Context map[string]any `json:"context,omitempty"`
}

// Diff calculates the difference between prev and next.
// It returns nil when nothing changed.
func Diff(prev, next Snapshot) *SnapshotDiff {
	diff := &SnapshotDiff{}
	if prev.State != next.State {
		state := next.State
		diff.State = &state
	}
	diff.Context = diffContext(prev.Context, next.Context)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffContext(prev, next Context) map[string]any {
	delta := make(map[string]any)

	for k, v := range next.values {
		old, exists := prev.values[k]
		if !exists || !reflect.DeepEqual(old, v) {
			delta[k] = v
		}
	}
	for k := range prev.values {
		if _, exists := next.values[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any change.
func (d *SnapshotDiff) IsEmpty() bool {
	return d == nil || (d.State == nil && len(d.Context) == 0)
}
