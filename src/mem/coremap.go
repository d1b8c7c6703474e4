// Package mem implements the physical frame allocator backing a coremap,
// grounded on the teacher's src/mem/mem.go (Physmem_t: a sync.Mutex-guarded
// free-list allocator over a Pa_t-addressed Pgs slice) and on
// dumbvm.c's vm_bootstrap/getppages/free_kpages for the exact algorithm:
// reserve the coremap's own storage from the front of the physical region,
// then linear-scan first-fit over the remaining frames.
package mem

import (
	"sync"

	"github.com/haiyixx/os161-1.99/src/limits"
	"github.com/haiyixx/os161-1.99/src/stats"
	"github.com/haiyixx/os161-1.99/src/util"
)

// Pa_t is a physical address, kept as a distinct type from the teacher's
// mem.Pa_t so that frame arithmetic can't accidentally mix with virtual
// addresses.
type Pa_t uintptr

// StealFn is the primitive early-boot allocator: "steal_memory(npages) ->
// physical_address", the one external collaborator this component consumes
// before its own bootstrap completes (spec.md §1, §4.1).
type StealFn func(npages int) Pa_t

// FrameEntry is one element of the coremap (spec.md §3).
type FrameEntry struct {
	PhysAddr   Pa_t
	Available  bool
	Contiguous bool
	RunLength  int
}

const frameEntrySize = 32 // conservative upper bound on FrameEntry's packed size

// Coremap_t tracks physical frame ownership and serializes allocation
// behind a single lock, playing the spinlock's role from spec.md §4.1: in
// this userland-hosted nucleus a sync.Mutex stands in for a true spinlock
// since there is no interrupt controller to mask.
type Coremap_t struct {
	sync.Mutex
	frames []FrameEntry
	booted bool
	steal  StealFn

	Allocs stats.Counter_t
	Frees  stats.Counter_t
}

// New creates a Coremap_t that falls through to steal for every allocation
// until Bootstrap is called.
func New(steal StealFn) *Coremap_t {
	return &Coremap_t{steal: steal}
}

// Bootstrap initializes the coremap from the remaining physical range
// [lo, hi), reserving its own backing storage from the front of the range
// as dumbvm.c's vm_bootstrap does.
func (c *Coremap_t) Bootstrap(lo, hi Pa_t) {
	c.Lock()
	defer c.Unlock()

	frameCount := int((hi - lo) / limits.PageSize)
	reserved := util.Roundup(frameCount*frameEntrySize, limits.PageSize)
	actualLo := lo + Pa_t(reserved)
	frameCount = int((hi - actualLo) / limits.PageSize)
	if frameCount < 0 {
		frameCount = 0
	}

	c.frames = make([]FrameEntry, frameCount)
	for i := range c.frames {
		c.frames[i] = FrameEntry{
			PhysAddr:  actualLo + Pa_t(i*limits.PageSize),
			Available: true,
		}
	}
	c.booted = true
}

// AllocateFrames returns the base of n contiguous available frames,
// marking them unavailable, or (0, false) if none are found. Strict
// first-fit in index order, per spec.md §4.1.
func (c *Coremap_t) AllocateFrames(n int) (Pa_t, bool) {
	if n <= 0 {
		panic("bad frame count")
	}
	c.Lock()
	defer c.Unlock()

	if !c.booted {
		return c.steal(n), true
	}

	for i := 0; i+n <= len(c.frames); i++ {
		ok := true
		for j := 0; j < n; j++ {
			if !c.frames[i+j].Available {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for j := 0; j < n; j++ {
			c.frames[i+j].Available = false
			c.frames[i+j].Contiguous = true
			c.frames[i+j].RunLength = 0
		}
		c.frames[i].RunLength = n
		c.Allocs.Inc()
		return c.frames[i].PhysAddr, true
	}
	return 0, false
}

// FreeFrames releases the run of frames starting at addr. addr must be the
// base of a previous AllocateFrames call; freeing any other address is a
// contract violation by the caller and panics, per spec.md §4.1.
func (c *Coremap_t) FreeFrames(addr Pa_t) {
	c.Lock()
	defer c.Unlock()

	idx := -1
	for i := range c.frames {
		if c.frames[i].PhysAddr == addr {
			idx = i
			break
		}
	}
	if idx < 0 {
		panic("free of unknown physical address")
	}
	n := c.frames[idx].RunLength
	if n <= 0 {
		panic("free of non-run-start frame")
	}
	for j := 0; j < n; j++ {
		c.frames[idx+j].Available = true
		c.frames[idx+j].Contiguous = false
		c.frames[idx+j].RunLength = 0
	}
	c.Frees.Inc()
}

// FrameCount returns the number of frames tracked, for diagnostics.
func (c *Coremap_t) FrameCount() int {
	c.Lock()
	defer c.Unlock()
	return len(c.frames)
}

// FreeCount returns the number of currently available frames.
func (c *Coremap_t) FreeCount() int {
	c.Lock()
	defer c.Unlock()
	n := 0
	for _, f := range c.frames {
		if f.Available {
			n++
		}
	}
	return n
}
