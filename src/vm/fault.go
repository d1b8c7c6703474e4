package vm

import (
	"github.com/haiyixx/os161-1.99/src/caller"
	"github.com/haiyixx/os161-1.99/src/defs"
	"github.com/haiyixx/os161-1.99/src/limits"
	"github.com/haiyixx/os161-1.99/src/stats"
	"github.com/haiyixx/os161-1.99/src/tlb"
)

var (
	faults    stats.Counter_t
	readonlys caller.Distinct_caller_t
)

// Result is the outcome of a fault. Kill reports that the faulting
// process should be terminated without a kernel panic, the way dumbvm.c's
// vm_fault handles VM_FAULT_READONLY under OPT_A3 instead of panicking.
type Result struct {
	Err  defs.Err_t
	Kill bool
}

// Fault resolves a page fault against as, installing a translation into
// tlbs on success. The fault kind is checked first: FaultReadOnly reports
// Kill and an unknown kind reports EINVAL, whatever as is. For a read or
// write fault, a nil as signals a fault taken with no address space set
// up (early boot, per dumbvm.c); per spec.md this is a caller contract
// violation and EFAULT is returned for the caller to panic on.
func Fault(as *AddressSpace, tlbs *tlb.Tlb_t, kind defs.FaultKind, addr uintptr) Result {
	faults.Inc()

	switch kind {
	case defs.FaultReadOnly:
		readonlys.Distinct()
		return Result{Kill: true}
	case defs.FaultRead, defs.FaultWrite:
		// fall through
	default:
		return Result{Err: defs.EINVAL}
	}

	if as == nil {
		return Result{Err: defs.EFAULT}
	}

	pa, inText, ok := as.Translate(addr)
	if !ok {
		return Result{Err: defs.EFAULT}
	}

	lo := uintptr(pa) | tlb.Valid | tlb.Dirty
	if inText && as.LoadComplete() {
		lo &^= tlb.Dirty
	}
	hi := addr &^ uintptr(limits.PageOffset)
	tlbs.WriteAny(tlb.Entry{Hi: hi, Lo: lo})
	return Result{}
}
