package lock

import "testing"

func TestTryAcquireGrantsFreeKey(t *testing.T) {
	tb := NewTable()
	if !tb.TryAcquire("k", "a") {
		t.Fatal("free key should be granted")
	}
	if h, ok := tb.HolderOf("k"); !ok || h != "a" {
		t.Fatalf("HolderOf = (%q, %v), want (a, true)", h, ok)
	}
}

func TestTryAcquireBusyForOtherHolder(t *testing.T) {
	tb := NewTable()
	if !tb.TryAcquire("k", "a") {
		t.Fatal("first acquire should succeed")
	}
	if tb.TryAcquire("k", "b") {
		t.Fatal("second holder must not be granted")
	}
	// the failed attempt must not disturb the owner
	if h, _ := tb.HolderOf("k"); h != "a" {
		t.Fatalf("holder changed to %q", h)
	}
}

// TestReentrantAcquire verifies the single-writer stack: the same holder
// stacks acquisitions and the key frees only when every one is released.
func TestReentrantAcquire(t *testing.T) {
	tb := NewTable()
	if !tb.TryAcquire("k", "a") || !tb.TryAcquire("k", "a") {
		t.Fatal("reentrant acquire should succeed")
	}

	tb.Release("k", "a")
	if _, ok := tb.HolderOf("k"); !ok {
		t.Fatal("key released too early: one level of the stack remains")
	}
	if tb.TryAcquire("k", "b") {
		t.Fatal("other holder granted while depth > 0")
	}

	tb.Release("k", "a")
	if _, ok := tb.HolderOf("k"); ok {
		t.Fatal("key should be free after final release")
	}
	if !tb.TryAcquire("k", "b") {
		t.Fatal("freed key should be grantable to a new holder")
	}
}

func TestReleaseByNonHolderIsInert(t *testing.T) {
	tb := NewTable()
	tb.TryAcquire("k", "a")

	tb.Release("k", "b") // must never free another holder's lock
	if h, ok := tb.HolderOf("k"); !ok || h != "a" {
		t.Fatalf("HolderOf = (%q, %v) after foreign release, want (a, true)", h, ok)
	}

	tb.Release("missing", "a") // releasing an unlocked key is a no-op
	if tb.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tb.Len())
	}
}

func TestLenTracksLockedKeys(t *testing.T) {
	tb := NewTable()
	tb.TryAcquire("x", "a")
	tb.TryAcquire("y", "a")
	tb.TryAcquire("y", "a") // reentrant, still one entry
	if tb.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tb.Len())
	}
	tb.Release("y", "a")
	tb.Release("y", "a")
	if tb.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tb.Len())
	}
}
