package vm

import (
	"testing"

	"github.com/haiyixx/os161-1.99/src/defs"
	"github.com/haiyixx/os161-1.99/src/limits"
	"github.com/haiyixx/os161-1.99/src/mem"
	"github.com/haiyixx/os161-1.99/src/tlb"
)

func freshCoremap(t *testing.T) *mem.Coremap_t {
	t.Helper()
	c := mem.New(func(int) mem.Pa_t { t.Fatal("steal called after bootstrap"); return 0 })
	c.Bootstrap(0, mem.Pa_t((200+1)*limits.PageSize))
	return c
}

func TestPrepareLoadAndTranslate(t *testing.T) {
	c := freshCoremap(t)
	as := Create(c)
	if err := as.DefineRegion(0x400000, limits.PageSize, true, false, true); err != 0 {
		t.Fatalf("DefineRegion(text): %v", err)
	}
	if err := as.DefineRegion(0x500000, 2*limits.PageSize, true, true, false); err != 0 {
		t.Fatalf("DefineRegion(data): %v", err)
	}
	if err := as.PrepareLoad(); err != 0 {
		t.Fatalf("PrepareLoad: %v", err)
	}

	if _, inText, ok := as.Translate(0x400000); !ok || !inText {
		t.Fatalf("expected text region translation, got inText=%v ok=%v", inText, ok)
	}
	if _, inText, ok := as.Translate(0x500000 + uintptr(limits.PageSize)); !ok || inText {
		t.Fatalf("expected data region translation outside text, got inText=%v ok=%v", inText, ok)
	}
	if _, _, ok := as.Translate(0x999999); ok {
		t.Fatal("expected out-of-region address to miss")
	}

	top, err := as.DefineStack()
	if err != 0 {
		t.Fatalf("DefineStack: %v", err)
	}
	if top != uintptr(limits.USERSTACKTOP) {
		t.Fatalf("expected stack top %x, got %x", limits.USERSTACKTOP, top)
	}
}

func TestFaultInstallsCleanEntryAfterLoadComplete(t *testing.T) {
	c := freshCoremap(t)
	as := Create(c)
	_ = as.DefineRegion(0x400000, limits.PageSize, true, false, true)
	_ = as.DefineRegion(0x500000, limits.PageSize, true, true, false)
	if err := as.PrepareLoad(); err != 0 {
		t.Fatalf("PrepareLoad: %v", err)
	}
	tb := tlb.New(nil)
	as.CompleteLoad(tb)

	res := Fault(as, tb, defs.FaultRead, 0x400000)
	if res.Err != 0 || res.Kill {
		t.Fatalf("unexpected fault result %+v", res)
	}
	e := tb.Read(0)
	if e.Lo&tlb.Valid == 0 {
		t.Fatal("expected installed entry to be valid")
	}
	if e.Lo&tlb.Dirty != 0 {
		t.Fatal("expected text page to be clean once load is complete")
	}
}

func TestFaultReadOnlyKillsWithoutPanic(t *testing.T) {
	tb := tlb.New(nil)
	res := Fault(nil, tb, defs.FaultReadOnly, 0x400000)
	if !res.Kill {
		t.Fatal("expected FaultReadOnly to report Kill")
	}
}

func TestFaultNilAddressSpaceIsEFAULT(t *testing.T) {
	tb := tlb.New(nil)
	res := Fault(nil, tb, defs.FaultRead, 0x400000)
	if res.Err != defs.EFAULT {
		t.Fatalf("expected EFAULT, got %v", res.Err)
	}
}

func TestFaultUnknownKindIsEINVAL(t *testing.T) {
	tb := tlb.New(nil)
	res := Fault(nil, tb, defs.FaultKind(99), 0x400000)
	if res.Err != defs.EINVAL {
		t.Fatalf("expected EINVAL, got %v", res.Err)
	}
}

func TestCopyProducesIndependentFrames(t *testing.T) {
	c := freshCoremap(t)
	as := Create(c)
	_ = as.DefineRegion(0x400000, limits.PageSize, true, false, true)
	_ = as.DefineRegion(0x500000, limits.PageSize, true, true, false)
	if err := as.PrepareLoad(); err != 0 {
		t.Fatalf("PrepareLoad: %v", err)
	}

	dst, err := as.Copy()
	if err != 0 {
		t.Fatalf("Copy: %v", err)
	}
	srcPA, _, _ := as.Translate(0x400000)
	dstPA, _, _ := dst.Translate(0x400000)
	if srcPA == dstPA {
		t.Fatal("expected copy to allocate distinct physical frames")
	}
}
