package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Snapshot is a (state id, context) pair: the node the planner searches over
// and the value the engine transitions between.
type Snapshot struct {
	State   string  `json:"state"`
	Context Context `json:"context"`
}

// Key is the canonical serialization of the pair. Two snapshots are the same
// node exactly when their keys are equal.
func (s Snapshot) Key() string {
	b, err := json.Marshal(s)
	if err != nil {
		return s.State + "|" + fmt.Sprintf("%v", s.Context.values)
	}
	return string(b)
}

// Fingerprint is a short stable hash of Key, suitable for diagram ids and logs.
func (s Snapshot) Fingerprint() string {
	return strconv.FormatUint(xxhash.Sum64String(s.Key()), 16)
}

// Describe renders the node the way plans are labelled:
//
//	reaches state: "cart" ({"cartsCanceled":0})
func (s Snapshot) Describe() string {
	return fmt.Sprintf("reaches state: %q (%s)", s.State, s.Context)
}

// Equal compares two snapshots by identity.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.Key() == other.Key()
}
