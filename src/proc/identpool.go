// Package proc implements the process model: identifier assignment, the
// process table, and the fork/exit/waitpid/getpid/execv lifecycle
// operations, grounded on proc.c and proc_syscalls.c.
package proc

import (
	"sync"

	"github.com/haiyixx/os161-1.99/src/defs"
	"github.com/haiyixx/os161-1.99/src/limits"
)

// IdentPool_t hands out process identifiers, mirroring proc.c's
// assign_pid/add_pid_pool pair: a free list is drained first (FIFO, the
// order the original's array_get(pid_pool, 0) drains in), then a
// monotonic counter mints new identifiers up to PidMax.
type IdentPool_t struct {
	sync.Mutex
	free []defs.Pid_t
	next defs.Pid_t
}

// NewIdentPool returns a pool starting at limits.PidMin.
func NewIdentPool() *IdentPool_t {
	return &IdentPool_t{next: limits.PidMin}
}

// Assign returns a fresh process identifier, or ENOMEM once the pool is
// exhausted (spec.md Open Question #4: exhaustion is an ordinary error,
// not a panic).
func (p *IdentPool_t) Assign() (defs.Pid_t, defs.Err_t) {
	p.Lock()
	defer p.Unlock()

	if len(p.free) > 0 {
		pid := p.free[0]
		p.free = p.free[1:]
		return pid, 0
	}
	if p.next > limits.PidMax {
		return 0, defs.ENOMEM
	}
	pid := p.next
	p.next++
	return pid, 0
}

// Release returns pid to the pool for reuse.
func (p *IdentPool_t) Release(pid defs.Pid_t) {
	p.Lock()
	defer p.Unlock()
	p.free = append(p.free, pid)
}
