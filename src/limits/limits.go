// Package limits holds the nucleus's compile-time sizing constants and the
// atomic resource-census counters, in the same Sysatomic_t style the
// teacher kernel uses for its system-wide limits.
package limits

import "sync/atomic"

const (
	// PageShift is the base-2 exponent of the page size.
	PageShift = 12
	// PageSize is the size in bytes of a single physical frame.
	PageSize = 1 << PageShift
	// PageOffset masks the in-page offset of an address.
	PageOffset = PageSize - 1

	// StackPages is the fixed size of every address space's user stack,
	// per spec.md §3/§4.3 ("a fixed 12-page vector").
	StackPages = 12

	// NumTLB is the number of slots in the software-managed TLB.
	NumTLB = 64

	// PathMax bounds any null-terminated path or argv string copied
	// between user and kernel space.
	PathMax = 1024

	// PidMin and PidMax bound the process identifier space, mirroring
	// traditional Unix pid ranges (spec.md §6).
	PidMin = 2
	PidMax = 1 << 16

	// USERSTACKTOP is the top of every process's user stack region.
	USERSTACKTOP = 0x7fffffff & ^(PageOffset)
)

// Sysatomic_t is an atomically updated resource counter, kept from the
// teacher's limits.Sysatomic_t (src/limits/limits.go).
type Sysatomic_t int64

/// Given increases the counter by n.
func (s *Sysatomic_t) Given(n uint) {
	if int64(n) < 0 {
		panic("too mighty")
	}
	atomic.AddInt64((*int64)(s), int64(n))
}

/// Taken tries to decrement the counter by n, refusing to go negative.
func (s *Sysatomic_t) Taken(n uint) bool {
	if int64(n) < 0 {
		panic("too mighty")
	}
	g := atomic.AddInt64((*int64)(s), -int64(n))
	if g >= 0 {
		return true
	}
	atomic.AddInt64((*int64)(s), int64(n))
	return false
}

/// Value returns a snapshot of the counter.
func (s *Sysatomic_t) Value() int64 {
	return atomic.LoadInt64((*int64)(s))
}

/// Dec atomically decrements the counter by one and returns the
/// resulting value, so a caller can test for an exact zero-transition
/// without a separate, racy load after the decrement.
func (s *Sysatomic_t) Dec() int64 {
	return atomic.AddInt64((*int64)(s), -1)
}

// Census_t tracks the live user-process count, repurposing the teacher's
// Syslimit_t shape (a struct of Sysatomic_t counters) for a single counter
// instead of vnodes/futexes/sockets.
type Census_t struct {
	Userprocs Sysatomic_t
}
