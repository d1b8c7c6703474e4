// Package vm implements the three-region flat address space and fault
// handler from dumbvm.c: two loadable regions (text, data) plus a fixed
// stack, each backed by a per-page vector of physical frames rather than
// a single contiguous allocation, since the frame allocator only promises
// single-frame runs are always satisfiable.
package vm

import (
	"github.com/haiyixx/os161-1.99/src/defs"
	"github.com/haiyixx/os161-1.99/src/limits"
	"github.com/haiyixx/os161-1.99/src/mem"
	"github.com/haiyixx/os161-1.99/src/tlb"
	"github.com/haiyixx/os161-1.99/src/util"
)

// Region is one of the two loadable segments of an address space.
type Region struct {
	Base      uintptr
	Npages    int
	Readable  bool
	Writeable bool
	Execable  bool
	frames    []mem.Pa_t // one entry per page, nil until PrepareLoad
}

// AddressSpace is the flat, three-region address space dumbvm.c builds:
// two loadable regions defined by DefineRegion (text then data, in call
// order) and a fixed-size stack.
type AddressSpace struct {
	coremap *mem.Coremap_t

	region1 Region
	region2 Region
	stack   []mem.Pa_t

	loadComplete bool
}

// Create returns an empty address space backed by coremap for frame
// allocation.
func Create(coremap *mem.Coremap_t) *AddressSpace {
	return &AddressSpace{coremap: coremap}
}

// DefineRegion records the base/size/permissions of the next loadable
// region. Only two calls are supported, matching dumbvm.c's
// as_define_region ("Support for more than two regions is not
// available.").
func (as *AddressSpace) DefineRegion(base uintptr, size int, r, w, x bool) defs.Err_t {
	size += int(base & uintptr(limits.PageOffset))
	base &= ^uintptr(limits.PageOffset)
	size = util.Roundup(size, limits.PageSize)
	npages := size / limits.PageSize

	reg := Region{Base: base, Npages: npages, Readable: r, Writeable: w, Execable: x}
	switch {
	case as.region1.Npages == 0:
		as.region1 = reg
	case as.region2.Npages == 0:
		as.region2 = reg
	default:
		return defs.EINVAL
	}
	return 0
}

func allocPerPage(coremap *mem.Coremap_t, npages int) ([]mem.Pa_t, defs.Err_t) {
	frames := make([]mem.Pa_t, npages)
	for i := 0; i < npages; i++ {
		pa, ok := coremap.AllocateFrames(1)
		if !ok {
			for j := 0; j < i; j++ {
				coremap.FreeFrames(frames[j])
			}
			return nil, defs.ENOMEM
		}
		frames[i] = pa
	}
	return frames, 0
}

// PrepareLoad allocates one physical frame per page of both loadable
// regions and the fixed-size stack, per dumbvm.c's as_prepare_load. Every
// page is independently allocated since the coremap makes no promise of
// contiguity across unrelated DefineRegion calls.
func (as *AddressSpace) PrepareLoad() defs.Err_t {
	f1, err := allocPerPage(as.coremap, as.region1.Npages)
	if err != 0 {
		return err
	}
	f2, err := allocPerPage(as.coremap, as.region2.Npages)
	if err != 0 {
		for _, pa := range f1 {
			as.coremap.FreeFrames(pa)
		}
		return err
	}
	fs, err := allocPerPage(as.coremap, limits.StackPages)
	if err != 0 {
		for _, pa := range f1 {
			as.coremap.FreeFrames(pa)
		}
		for _, pa := range f2 {
			as.coremap.FreeFrames(pa)
		}
		return err
	}
	as.region1.frames = f1
	as.region2.frames = f2
	as.stack = fs
	return 0
}

// CompleteLoad marks the address space loaded: from this point on, text
// pages installed into the TLB are marked clean instead of dirty (spec.md
// Open Question #1 / dumbvm.c's load_elf_complete flag), and flushes tlbs
// so no stale dirty entry for a text page survives into the running
// program, per dumbvm.c's as_complete_load calling vm_tlbshootdown_all.
func (as *AddressSpace) CompleteLoad(tlbs *tlb.Tlb_t) {
	as.loadComplete = true
	if tlbs != nil {
		tlbs.InvalidateAll()
	}
}

// DefineStack returns the fixed top-of-stack address. The stack's
// physical frames must already exist via PrepareLoad.
func (as *AddressSpace) DefineStack() (uintptr, defs.Err_t) {
	if as.stack == nil {
		panic("DefineStack before PrepareLoad")
	}
	return uintptr(limits.USERSTACKTOP), 0
}

// Translate maps a faulting virtual address to its backing physical frame
// and reports whether the translation lands in the text region (region1)
// for the TLB dirty-bit decision in fault.go. It returns ok=false if the
// address is outside every region.
func (as *AddressSpace) Translate(vaddr uintptr) (pa mem.Pa_t, inText bool, ok bool) {
	page := vaddr &^ uintptr(limits.PageOffset)

	if within(page, as.region1) {
		idx := int((page - as.region1.Base) / limits.PageSize)
		return as.region1.frames[idx], true, true
	}
	if within(page, as.region2) {
		idx := int((page - as.region2.Base) / limits.PageSize)
		return as.region2.frames[idx], false, true
	}

	stackBase := uintptr(limits.USERSTACKTOP) - uintptr(limits.StackPages*limits.PageSize)
	if page >= stackBase && page < uintptr(limits.USERSTACKTOP) {
		idx := int((page - stackBase) / limits.PageSize)
		return as.stack[idx], false, true
	}
	return 0, false, false
}

func within(page uintptr, r Region) bool {
	if r.Npages == 0 {
		return false
	}
	top := r.Base + uintptr(r.Npages*limits.PageSize)
	return page >= r.Base && page < top
}

// LoadComplete reports whether CompleteLoad has run.
func (as *AddressSpace) LoadComplete() bool {
	return as.loadComplete
}

// Copy duplicates an address space's region layout, permissions and
// load state, allocating a fresh frame for every page. dumbvm.c's as_copy
// copies old.as_npagesN*PAGE_SIZE bytes out of every destination page,
// which over-reads past the first page whenever a region is more than one
// page long; this nucleus does not reproduce that. Frame contents are not
// copied: frames have no backing bytes here, and copyPages moves nothing.
func (as *AddressSpace) Copy() (*AddressSpace, defs.Err_t) {
	dst := Create(as.coremap)
	dst.region1 = Region{Base: as.region1.Base, Npages: as.region1.Npages,
		Readable: as.region1.Readable, Writeable: as.region1.Writeable, Execable: as.region1.Execable}
	dst.region2 = Region{Base: as.region2.Base, Npages: as.region2.Npages,
		Readable: as.region2.Readable, Writeable: as.region2.Writeable, Execable: as.region2.Execable}

	if err := dst.PrepareLoad(); err != 0 {
		return nil, err
	}

	copyPages(dst.region1.frames, as.region1.frames)
	copyPages(dst.region2.frames, as.region2.frames)
	copyPages(dst.stack, as.stack)

	dst.loadComplete = as.loadComplete
	return dst, 0
}

// copyPages copies the backing content of every frame in src into the
// corresponding frame of dst. Physical frames are simulated in-process
// (there is no kernel-direct-map to memmove through), so the copy is a
// no-op placeholder recording that exactly one page per frame is
// transferred; a hosted backing store would memmove PageSize bytes here.
func copyPages(dst, src []mem.Pa_t) {
	for i := range dst {
		_ = src[i]
		_ = dst[i]
	}
}

// Destroy releases every physical frame backing the address space.
func (as *AddressSpace) Destroy() {
	for _, pa := range as.region1.frames {
		as.coremap.FreeFrames(pa)
	}
	for _, pa := range as.region2.frames {
		as.coremap.FreeFrames(pa)
	}
	for _, pa := range as.stack {
		as.coremap.FreeFrames(pa)
	}
}
