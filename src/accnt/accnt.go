// Package accnt accumulates per-process CPU accounting information, kept
// from the teacher's src/accnt/accnt.go. Wired into proc.Process as a
// supplemental feature (see SPEC_FULL.md) finalized in exit.
package accnt

import (
	"sync"
	"sync/atomic"
	"time"
)

/// Accnt_t accumulates per-process accounting information. Userns and
/// Sysns store runtime in nanoseconds. The embedded mutex lets callers take
/// a consistent snapshot when exporting usage.
type Accnt_t struct {
	Userns int64
	Sysns  int64
	sync.Mutex
}

/// Utadd adds delta nanoseconds to the user-time counter.
func (a *Accnt_t) Utadd(delta int64) {
	atomic.AddInt64(&a.Userns, delta)
}

/// Systadd adds delta nanoseconds to the system-time counter.
func (a *Accnt_t) Systadd(delta int64) {
	atomic.AddInt64(&a.Sysns, delta)
}

/// Finish finalizes accounting, adding the elapsed time since start to
/// system time. Called once by proc.exit.
func (a *Accnt_t) Finish(start time.Time) {
	a.Systadd(int64(time.Since(start)))
}

/// Add merges another accounting record into this one.
func (a *Accnt_t) Add(n *Accnt_t) {
	a.Lock()
	a.Userns += atomic.LoadInt64(&n.Userns)
	a.Sysns += atomic.LoadInt64(&n.Sysns)
	a.Unlock()
}

/// Usage is a snapshot of accumulated usage, analogous to rusage.
type Usage struct {
	User time.Duration
	Sys  time.Duration
}

/// Fetch returns a consistent snapshot of the accounting information.
func (a *Accnt_t) Fetch() Usage {
	a.Lock()
	defer a.Unlock()
	return Usage{
		User: time.Duration(a.Userns),
		Sys:  time.Duration(a.Sysns),
	}
}
