// Package tinfo tracks per-thread bookkeeping, adapted from the teacher's
// src/tinfo/tinfo.go Tnote_t/Threadinfo_t pair.
//
// The teacher's Current/SetCurrent/ClearCurrent helpers read a per-goroutine
// scratch pointer (runtime.Gptr/Setgptr) that only exists because biscuit
// forks the Go runtime to add it. Stock Go has no such hook, so this
// package drops the "ambient current thread" idea entirely: a caller
// passes a defs.Tid_t explicitly to Add/Remove on the table below.
// proc.Process embeds one table per process and initializes it; none of
// the proc lifecycle operations adds or removes thread notes.
package tinfo

import (
	"sync"

	"github.com/haiyixx/os161-1.99/src/defs"
)

/// Tnote_t stores per-thread state for one thread in a process's thread list.
type Tnote_t struct {
	sync.Mutex
	Alive  bool
	Killed bool
}

/// Doomed reports whether the thread has been marked for termination.
func (t *Tnote_t) Doomed() bool {
	t.Lock()
	defer t.Unlock()
	return t.Killed
}

/// Threadinfo_t tracks all thread notes belonging to one process.
type Threadinfo_t struct {
	sync.Mutex
	Notes map[defs.Tid_t]*Tnote_t
}

/// Init initializes the thread info map.
func (t *Threadinfo_t) Init() {
	t.Notes = make(map[defs.Tid_t]*Tnote_t)
}

/// Add registers a new thread note for tid and returns it.
func (t *Threadinfo_t) Add(tid defs.Tid_t) *Tnote_t {
	t.Lock()
	defer t.Unlock()
	n := &Tnote_t{Alive: true}
	t.Notes[tid] = n
	return n
}

/// Remove deletes the thread note for tid.
func (t *Threadinfo_t) Remove(tid defs.Tid_t) {
	t.Lock()
	defer t.Unlock()
	delete(t.Notes, tid)
}

/// Len returns the number of tracked threads.
func (t *Threadinfo_t) Len() int {
	t.Lock()
	defer t.Unlock()
	return len(t.Notes)
}
