package proc

import (
	"sync"
	"time"

	"github.com/haiyixx/os161-1.99/src/accnt"
	"github.com/haiyixx/os161-1.99/src/defs"
	"github.com/haiyixx/os161-1.99/src/tinfo"
	"github.com/haiyixx/os161-1.99/src/ustr"
	"github.com/haiyixx/os161-1.99/src/vm"
)

// Process is one process's kernel-side state, grounded on proc.c's
// struct proc plus the OPT_A2 fields proc_syscalls.c relies on
// (can_exit/exit_code/wait_pid_lock/wait_pid_cv/child_proc/child_proc_lock).
type Process struct {
	sync.Mutex // stands in for p_lock

	Name string
	Pid  defs.Pid_t
	AS   *vm.AddressSpace
	Cwd  ustr.Ustr

	Threads tinfo.Threadinfo_t
	Accnt   accnt.Accnt_t

	Parent *Process

	childrenLock sync.Mutex
	children     []*Process

	waitLock sync.Mutex
	waitCV   *sync.Cond
	canExit  bool
	exitCode int
}

func newProcess(name string) *Process {
	p := &Process{Name: name, Cwd: ustr.MkUstrRoot()}
	p.Threads.Init()
	p.waitCV = sync.NewCond(&p.waitLock)
	return p
}

// AddChild records child as one of p's children, as sys_fork's
// procarray_add(&curproc->child_proc, ...) does.
func (p *Process) AddChild(child *Process) {
	p.childrenLock.Lock()
	defer p.childrenLock.Unlock()
	child.Parent = p
	p.children = append(p.children, child)
}

func (p *Process) removeChild(child *Process) {
	p.childrenLock.Lock()
	defer p.childrenLock.Unlock()
	for i, c := range p.children {
		if c == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return
		}
	}
}

func (p *Process) findChild(pid defs.Pid_t) *Process {
	p.childrenLock.Lock()
	defer p.childrenLock.Unlock()
	for _, c := range p.children {
		if c.Pid == pid {
			return c
		}
	}
	return nil
}

func (p *Process) childSnapshot() []*Process {
	p.childrenLock.Lock()
	defer p.childrenLock.Unlock()
	out := make([]*Process, len(p.children))
	copy(out, p.children)
	return out
}

// markExited records the exit code and wakes any waiter, as sys__exit's
// lock_acquire(wait_pid_lock)/cv_broadcast sequence does.
func (p *Process) markExited(code int, start time.Time) {
	p.Accnt.Finish(start)
	p.waitLock.Lock()
	p.canExit = true
	p.exitCode = code
	p.waitCV.Broadcast()
	p.waitLock.Unlock()
}

// waitExit blocks until the process has exited and returns the packed
// exit status markExited recorded.
func (p *Process) waitExit() int {
	p.waitLock.Lock()
	defer p.waitLock.Unlock()
	for !p.canExit {
		p.waitCV.Wait()
	}
	return p.exitCode
}

func (p *Process) hasExited() bool {
	p.waitLock.Lock()
	defer p.waitLock.Unlock()
	return p.canExit
}
