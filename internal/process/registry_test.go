package process

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestRegistryRegisterLookupUnregister(t *testing.T) {
	r := NewRegistry()
	h := NewHandle(4242)

	if err := r.Register("a", h); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, ok := r.Lookup("a")
	if !ok || got != h {
		t.Fatalf("Lookup(a) = %v, %v; want registered handle", got, ok)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	r.Unregister("a")
	if _, ok := r.Lookup("a"); ok {
		t.Error("handle still present after Unregister")
	}

	// Second unregister is a no-op.
	r.Unregister("a")
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRegistryRejectsDuplicateID(t *testing.T) {
	r := NewRegistry()
	first := NewHandle(1)
	if err := r.Register("dup", first); err != nil {
		t.Fatal(err)
	}

	err := r.Register("dup", NewHandle(2))
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}

	got, _ := r.Lookup("dup")
	if got != first {
		t.Error("duplicate Register replaced the original handle")
	}
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	_ = r.Register("a", NewHandle(1))
	_ = r.Register("b", NewHandle(2))

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot has %d entries, want 2", len(snap))
	}

	delete(snap, "a")
	if _, ok := r.Lookup("a"); !ok {
		t.Error("mutating the snapshot changed the registry")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			if err := r.Register(id, NewHandle(1000+i)); err != nil {
				t.Errorf("Register(%s): %v", id, err)
			}
			r.Lookup(id)
			_ = r.Snapshot()
		}(i)
	}
	wg.Wait()

	if r.Len() != n {
		t.Fatalf("Len() = %d, want %d", r.Len(), n)
	}

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Unregister(fmt.Sprintf("s%d", i))
		}(i)
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Errorf("Len() = %d after unregistering all, want 0", r.Len())
	}
}
