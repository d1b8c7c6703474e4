package tlb

import (
	"testing"

	"github.com/haiyixx/os161-1.99/src/limits"
)

func TestWriteAnyFillsInvalidSlotsInOrder(t *testing.T) {
	tb := New(nil)
	e := Entry{Hi: 0x1000, Lo: Valid | Dirty}
	tb.WriteAny(e)
	if got := tb.Read(0); got != e {
		t.Fatalf("expected first slot filled, got %+v", got)
	}
}

func TestWriteAnyFallsBackToRandomWhenFull(t *testing.T) {
	tb := New(func(n int) int {
		if n != limits.NumTLB {
			t.Fatalf("rand called with wrong bound %d", n)
		}
		return 5
	})
	for i := 0; i < limits.NumTLB; i++ {
		tb.Write(Entry{Hi: uintptr(i), Lo: Valid}, i)
	}
	e := Entry{Hi: 0xdead, Lo: Valid | Dirty}
	tb.WriteAny(e)
	if got := tb.Read(5); got != e {
		t.Fatalf("expected random slot 5 overwritten, got %+v", got)
	}
}

func TestInvalidateAll(t *testing.T) {
	tb := New(nil)
	tb.Write(Entry{Hi: 1, Lo: Valid}, 3)
	tb.InvalidateAll()
	if got := tb.Read(3); got.valid() {
		t.Fatalf("expected slot invalidated, got %+v", got)
	}
}
