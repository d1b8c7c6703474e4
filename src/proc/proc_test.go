package proc

import (
	"testing"
	"time"

	"github.com/haiyixx/os161-1.99/src/defs"
	"github.com/haiyixx/os161-1.99/src/limits"
	"github.com/haiyixx/os161-1.99/src/mem"
)

func freshKernel(t *testing.T) *Kernel_t {
	t.Helper()
	c := mem.New(func(int) mem.Pa_t { t.Fatal("steal called after bootstrap"); return 0 })
	c.Bootstrap(0, mem.Pa_t(64*limits.PageSize))
	return NewKernel(c)
}

func TestIdentPoolAssignReleaseFIFO(t *testing.T) {
	p := NewIdentPool()
	a, err := p.Assign()
	if err != 0 {
		t.Fatalf("Assign: %v", err)
	}
	b, err := p.Assign()
	if err != 0 {
		t.Fatalf("Assign: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct pids")
	}
	p.Release(a)
	c, err := p.Assign()
	if err != 0 {
		t.Fatalf("Assign: %v", err)
	}
	if c != a {
		t.Fatalf("expected reused pid %d, got %d", a, c)
	}
}

func TestIdentPoolExhaustionReturnsENOMEM(t *testing.T) {
	p := NewIdentPool()
	p.next = limits.PidMax
	if _, err := p.Assign(); err != 0 {
		t.Fatalf("expected last valid pid to succeed, got %v", err)
	}
	if _, err := p.Assign(); err != defs.ENOMEM {
		t.Fatalf("expected ENOMEM once exhausted, got %v", err)
	}
}

func TestForkExitWaitpid(t *testing.T) {
	k := freshKernel(t)
	root, err := k.Bootstrap("init")
	if err != 0 {
		t.Fatalf("Bootstrap: %v", err)
	}

	child, err := k.Fork(root)
	if err != 0 {
		t.Fatalf("Fork: %v", err)
	}
	if _, ok := k.Table.Lookup(child.Pid); !ok {
		t.Fatal("expected child registered in process table")
	}

	done := make(chan struct{})
	go func() {
		k.Exit(child, 7, time.Now())
		close(done)
	}()
	<-done

	status, err := k.Waitpid(root, child.Pid)
	if err != 0 {
		t.Fatalf("Waitpid: %v", err)
	}
	if status != mkWaitExit(7) {
		t.Fatalf("expected packed status for exit code 7, got %d", status)
	}
}

func TestWaitpidUnknownChildIsECHILD(t *testing.T) {
	k := freshKernel(t)
	root, err := k.Bootstrap("init")
	if err != 0 {
		t.Fatalf("Bootstrap: %v", err)
	}
	if _, err := k.Waitpid(root, root.Pid+99); err != defs.ECHILD {
		t.Fatalf("expected ECHILD, got %v", err)
	}
}

func TestOrphanedChildSelfReapsOnExit(t *testing.T) {
	k := freshKernel(t)
	root, err := k.Bootstrap("init")
	if err != 0 {
		t.Fatalf("Bootstrap: %v", err)
	}
	child, err := k.Fork(root)
	if err != 0 {
		t.Fatalf("Fork: %v", err)
	}

	// Parent exits first, orphaning the still-running child.
	k.Exit(root, 0, time.Now())
	if child.Parent != nil {
		t.Fatal("expected child orphaned (parent cleared) once root is destroyed")
	}
	if _, ok := k.Table.Lookup(child.Pid); !ok {
		t.Fatal("expected still-running orphan to remain registered")
	}

	// Orphan later exits and must fully reap itself, no leaked pid.
	k.Exit(child, 3, time.Now())
	if _, ok := k.Table.Lookup(child.Pid); ok {
		t.Fatal("expected orphan to be reaped from the table on its own exit")
	}
}

func TestExecvStackLayoutIsFourByteAligned(t *testing.T) {
	k := freshKernel(t)
	p, err := k.Bootstrap("init")
	if err != 0 {
		t.Fatalf("Bootstrap: %v", err)
	}

	regions := [2]RegionSpec{
		{Base: 0x400000, Size: limits.PageSize, Readable: true, Execable: true},
		{Base: 0x500000, Size: limits.PageSize, Readable: true, Writeable: true},
	}
	res, err := k.Execv(p, nil, 0x400000, regions, []string{"prog", "a", "bb"})
	if err != 0 {
		t.Fatalf("Execv: %v", err)
	}
	if res.EntryPoint != 0x400000 {
		t.Fatalf("expected entry point to round-trip, got %x", res.EntryPoint)
	}
	if res.Argc != 3 {
		t.Fatalf("expected argc 3, got %d", res.Argc)
	}
	if len(res.ArgvPtrs) != 3 {
		t.Fatalf("expected 3 argv pointers, got %d", len(res.ArgvPtrs))
	}
	if res.StackPtr%4 != 0 {
		t.Fatalf("expected 4-byte aligned stack pointer, got %x", res.StackPtr)
	}
	for i, addr := range res.ArgvPtrs {
		if addr%4 != 0 {
			t.Fatalf("argv[%d] address %x not 4-byte aligned", i, addr)
		}
	}
	if p.AS == nil {
		t.Fatal("expected process to have a fresh address space after execv")
	}
}
