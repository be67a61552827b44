package blob_test

import (
	"sync"
	"testing"

	"github.com/peter-holm/message-digest/blob"
)

// TestNewBlobStartsWithOneReference verifies New returns a Blob that is
// immediately usable without a separate Ref call.
func TestNewBlobStartsWithOneReference(t *testing.T) {
	released := false
	b := blob.New([]byte("hello"), func([]byte) { released = true })

	if got := string(b.Mem()); got != "hello" {
		t.Fatalf("Mem() = %q, want %q", got, "hello")
	}
	if b.Size() != 5 {
		t.Fatalf("Size() = %d, want 5", b.Size())
	}

	b.Unref()
	if !released {
		t.Fatal("expected onZero to run after the sole reference is dropped")
	}
}

// TestRefUnrefBalance verifies onZero fires exactly once, only once every
// Ref has a matching Unref.
func TestRefUnrefBalance(t *testing.T) {
	calls := 0
	b := blob.New(make([]byte, 4), func([]byte) { calls++ })

	b.Ref()
	b.Ref()

	b.Unref()
	if calls != 0 {
		t.Fatalf("onZero fired early: calls=%d", calls)
	}
	b.Unref()
	if calls != 0 {
		t.Fatalf("onZero fired early: calls=%d", calls)
	}
	b.Unref()
	if calls != 1 {
		t.Fatalf("onZero fired %d times, want exactly 1", calls)
	}
}

// TestConcurrentRefUnref exercises the refcount under concurrent
// access: N goroutines each take and release one reference, and onZero
// must still fire exactly once at the end.
func TestConcurrentRefUnref(t *testing.T) {
	calls := 0
	b := blob.New(make([]byte, 4), func([]byte) { calls++ })

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		b.Ref()
		go func() {
			defer wg.Done()
			b.Unref()
		}()
	}
	wg.Wait()

	b.Unref() // the initial reference from New
	if calls != 1 {
		t.Fatalf("onZero fired %d times, want exactly 1", calls)
	}
}

// TestNewBlobWithNilOnZero verifies a nil onZero is safe to drop to zero.
func TestNewBlobWithNilOnZero(t *testing.T) {
	b := blob.New([]byte("x"), nil)
	b.Unref()
}
