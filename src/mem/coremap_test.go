package mem

import "testing"

func freshCoremap(t *testing.T, frameCount int) *Coremap_t {
	t.Helper()
	c := New(func(int) Pa_t { t.Fatal("steal called after bootstrap"); return 0 })
	// frameCount*frameEntrySize stays within a single page for every
	// size used in this file, so bootstrap reserves exactly one page
	// for the coremap itself: add one extra page of range to land on
	// exactly frameCount usable frames afterward.
	lo := Pa_t(0)
	hi := lo + Pa_t(frameCount+1)*4096
	c.Bootstrap(lo, hi)
	return c
}

func TestAllocateFreeReuse(t *testing.T) {
	c := freshCoremap(t, 16)

	a, ok := c.AllocateFrames(3)
	if !ok {
		t.Fatal("expected allocation of 3 frames to succeed")
	}
	b, ok := c.AllocateFrames(2)
	if !ok {
		t.Fatal("expected allocation of 2 frames to succeed")
	}
	if _, ok := c.AllocateFrames(1); !ok {
		t.Fatal("expected allocation of 1 frame to succeed")
	}

	c.FreeFrames(b)

	c2, ok := c.AllocateFrames(2)
	if !ok {
		t.Fatal("expected re-allocation of size 2 to succeed")
	}
	if c2 != b {
		t.Fatalf("expected first-fit reuse of freed base %v, got %v", b, c2)
	}
	if a == c2 {
		t.Fatal("distinct allocations must not overlap")
	}
}

func TestFreeNonRunStartPanics(t *testing.T) {
	c := freshCoremap(t, 8)
	base, ok := c.AllocateFrames(3)
	if !ok {
		t.Fatal("allocation failed")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic freeing a non-run-start frame")
		}
	}()
	c.FreeFrames(base + 4096)
}

func TestAllocateExhaustion(t *testing.T) {
	c := freshCoremap(t, 4)
	if _, ok := c.AllocateFrames(4); !ok {
		t.Fatal("expected full allocation to succeed")
	}
	if _, ok := c.AllocateFrames(1); ok {
		t.Fatal("expected allocation to fail once frames are exhausted")
	}
}

func TestPreBootstrapFallsThroughToSteal(t *testing.T) {
	called := false
	c := New(func(n int) Pa_t {
		called = true
		return Pa_t(n * 4096)
	})
	if _, ok := c.AllocateFrames(2); !ok {
		t.Fatal("expected pre-bootstrap allocation to succeed via steal")
	}
	if !called {
		t.Fatal("expected steal to be invoked before bootstrap")
	}
}
