package ids

import "testing"

func TestGenerateUnique(t *testing.T) {
	seen := make(map[int64]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := Generate()
		if id <= 0 {
			t.Fatalf("non-positive id: %d", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id: %d", id)
		}
		seen[id] = struct{}{}
	}
}

func TestGenerateMonotonic(t *testing.T) {
	prev := Generate()
	for i := 0; i < 1000; i++ {
		id := Generate()
		if id <= prev {
			t.Fatalf("id not increasing: prev=%d got=%d", prev, id)
		}
		prev = id
	}
}

func TestSetNodeIDOutOfRange(t *testing.T) {
	SetNodeID(5000)
	if defaultGen.nodeID != 1 {
		t.Fatalf("expected fallback node 1, got %d", defaultGen.nodeID)
	}
	SetNodeID(42)
	if defaultGen.nodeID != 42 {
		t.Fatalf("expected node 42, got %d", defaultGen.nodeID)
	}
}
