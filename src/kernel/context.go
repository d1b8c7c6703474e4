// Package kernel bootstraps the nucleus: it owns the coremap, the
// software TLB, the process model, and the process-count quiescence
// signal, plus the narrow collaborator interfaces spec.md names as
// external to this nucleus (the primitive stealer, the ELF loader, the
// console). Grounded on src/kernel/chentry.go's single-routine,
// panic-on-failure bootstrap idiom, though none of that file's
// boot/IRQ plumbing itself applies here.
package kernel

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/haiyixx/os161-1.99/src/defs"
	"github.com/haiyixx/os161-1.99/src/limits"
	"github.com/haiyixx/os161-1.99/src/mem"
	"github.com/haiyixx/os161-1.99/src/proc"
	"github.com/haiyixx/os161-1.99/src/tlb"
	"github.com/haiyixx/os161-1.99/src/vm"
)

// Console is the out-of-scope console device collaborator.
type Console interface {
	Open(path string) error
}

// Context bundles every piece of shared kernel state into one
// bootstrapped unit.
type Context struct {
	Coremap *mem.Coremap_t
	Tlb     *tlb.Tlb_t
	Procs   *proc.Kernel_t

	quiescence *semaphore.Weighted
	census     limits.Census_t
	loader     ELFLoader
}

// New wires a fresh Context. steal is the primitive early-boot allocator
// (spec.md §1's "steal_memory" collaborator); rand feeds the TLB's
// random-replacement fallback. The ELF loader defaults to FlatELFLoader;
// call SetLoader to install a different one.
func New(steal mem.StealFn, rand tlb.RandFn) *Context {
	coremap := mem.New(steal)
	c := &Context{
		Coremap:    coremap,
		Tlb:        tlb.New(rand),
		Procs:      proc.NewKernel(coremap),
		quiescence: semaphore.NewWeighted(1),
		loader:     FlatELFLoader{},
	}
	if !c.quiescence.TryAcquire(1) {
		panic("quiescence semaphore must start held")
	}
	return c
}

// SetLoader installs the ELF loader collaborator Execv consults for
// region layout and entry point.
func (c *Context) SetLoader(loader ELFLoader) {
	c.loader = loader
}

// Bootstrap reserves [lo, hi) for the coremap and creates the first,
// parentless process, panicking on failure exactly as chentry-style
// bootstrap routines do for an unrecoverable early-boot error.
func (c *Context) Bootstrap(lo, hi mem.Pa_t, name string) *proc.Process {
	c.Coremap.Bootstrap(lo, hi)
	p, err := c.Procs.Bootstrap(name)
	if err != 0 {
		panic("could not create first process")
	}
	c.census.Userprocs.Given(1)
	return p
}

// Fork creates a child of parent and accounts for it in the live-process
// census.
func (c *Context) Fork(parent *proc.Process) (*proc.Process, defs.Err_t) {
	child, err := c.Procs.Fork(parent)
	if err != 0 {
		return nil, err
	}
	c.census.Userprocs.Given(1)
	return child, 0
}

// Exit tears p down and, if this was the last live process, releases the
// quiescence semaphore exactly once for this zero-transition, mirroring
// proc.c's proc_count/no_proc_sem pair under its "#ifdef UW" block. The
// census is a proc_count_mutex-equivalent counter distinct from the
// quiescence semaphore itself: Sysatomic_t's atomic add is what makes the
// zero-transition check race-free under concurrent Fork/Exit, where a
// plain unguarded int would let two exiting processes both observe zero
// and double-release.
func (c *Context) Exit(p *proc.Process, code int, start time.Time) {
	c.Procs.Exit(p, code, start)
	if remaining := c.census.Userprocs.Dec(); remaining == 0 {
		c.quiescence.Release(1)
	} else if remaining < 0 {
		panic("live process census went negative")
	}
}

// WaitQuiescent blocks until the live-process count has reached zero at
// least once since the last WaitQuiescent call.
func (c *Context) WaitQuiescent(ctx context.Context) error {
	if err := c.quiescence.Acquire(ctx, 1); err != nil {
		return err
	}
	return nil
}

// Execv consults the configured ELFLoader for path's entry point and
// segment layout, then replaces p's address space accordingly, per
// sys_execv. path/argv are bounded by limits.PathMax before the loader
// ever runs, mirroring sys_execv's copyinstr size checks.
func (c *Context) Execv(p *proc.Process, path string, argv []string) (proc.ExecResult, defs.Err_t) {
	if len(path) == 0 {
		return proc.ExecResult{}, defs.EINVAL
	}
	if len(path) >= limits.PathMax {
		return proc.ExecResult{}, defs.ENAMETOOLONG
	}
	for _, a := range argv {
		if len(a) >= limits.PathMax {
			return proc.ExecResult{}, defs.ENAMETOOLONG
		}
	}

	entry, segments, err := c.loader.Load(path)
	if err != 0 {
		return proc.ExecResult{}, err
	}
	if len(segments) != 2 {
		panic("dumbvm-style address spaces support exactly two loadable segments")
	}

	var regions [2]proc.RegionSpec
	for i, s := range segments {
		regions[i] = proc.RegionSpec{
			Base:      s.Base,
			Size:      s.Npages * limits.PageSize,
			Readable:  s.Readable,
			Writeable: s.Writeable,
			Execable:  s.Execable,
		}
	}

	return c.Procs.Execv(p, c.Tlb, entry, regions, argv)
}

// Fault resolves a page fault taken by p.
func (c *Context) Fault(p *proc.Process, kind defs.FaultKind, addr uintptr) vm.Result {
	if p == nil {
		return vm.Result{Err: defs.EFAULT}
	}
	return vm.Fault(p.AS, c.Tlb, kind, addr)
}
