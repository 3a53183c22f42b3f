package memory_test

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	tests.CoverageStoreContractTest(t, memory.NewStore())
}
