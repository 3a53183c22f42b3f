package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name      string
		prev      Snapshot
		next      Snapshot
		wantState *string
		wantCtx   map[string]any
		wantNil   bool
	}{
		{
			name:    "No Changes",
			prev:    Snapshot{State: "cart", Context: NewContext(map[string]any{"a": 1})},
			next:    Snapshot{State: "cart", Context: NewContext(map[string]any{"a": 1})},
			wantNil: true,
		},
		{
			name:      "State Change Only",
			prev:      Snapshot{State: "shopping"},
			next:      Snapshot{State: "cart"},
			wantState: &[]string{"cart"}[0],
		},
		{
			name:    "Context Added & Modified",
			prev:    Snapshot{State: "mid", Context: NewContext(map[string]any{"a": 1, "b": "old"})},
			next:    Snapshot{State: "mid", Context: NewContext(map[string]any{"a": 1, "b": "new", "c": true})},
			wantCtx: map[string]any{"b": "new", "c": true},
		},
		{
			name:    "Context Deletion",
			prev:    Snapshot{Context: NewContext(map[string]any{"a": 1, "b": 2})},
			next:    Snapshot{Context: NewContext(map[string]any{"a": 1})},
			wantCtx: map[string]any{"b": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.prev, tt.next)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Diff() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Diff() = nil, want a diff")
			}
			if !reflect.DeepEqual(got.Context, tt.wantCtx) {
				t.Errorf("Diff().Context = %v, want %v", got.Context, tt.wantCtx)
			}
			if !equalPtr(got.State, tt.wantState) {
				t.Errorf("Diff().State = %v, want %v", got.State, tt.wantState)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Deletions as Null", func(t *testing.T) {
		prev := Snapshot{State: "a", Context: NewContext(map[string]any{"a": 1, "b": 2})}
		next := Snapshot{State: "a", Context: NewContext(map[string]any{"a": 1})}

		diff := Diff(prev, next)
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, _ := json.Marshal(diff)
		if !strings.Contains(string(bytes), `"b":null`) {
			t.Errorf("JSON should contain 'b':null for deletion, got: %s", string(bytes))
		}
		if strings.Contains(string(bytes), `"state"`) {
			t.Errorf("JSON should omit unchanged state, got: %s", string(bytes))
		}
	})
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
