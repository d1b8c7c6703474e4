package proc

import (
	"time"

	"github.com/haiyixx/os161-1.99/src/caller"
	"github.com/haiyixx/os161-1.99/src/defs"
	"github.com/haiyixx/os161-1.99/src/limits"
	"github.com/haiyixx/os161-1.99/src/mem"
	"github.com/haiyixx/os161-1.99/src/tlb"
	"github.com/haiyixx/os161-1.99/src/util"
	"github.com/haiyixx/os161-1.99/src/vm"
)

// Kernel_t bundles the process table and identifier pool, the process
// model's two pieces of shared state, grounded on proc.c's kproc/
// pid_pool/process_id globals collapsed into one struct instead of
// package-level variables.
type Kernel_t struct {
	Coremap *mem.Coremap_t
	Idents  *IdentPool_t
	Table   *Table_t

	orphans caller.Distinct_caller_t
}

// NewKernel returns a fresh process model backed by coremap for address
// space allocation.
func NewKernel(coremap *mem.Coremap_t) *Kernel_t {
	return &Kernel_t{
		Coremap: coremap,
		Idents:  NewIdentPool(),
		Table:   NewTable(),
	}
}

// Bootstrap creates the first, parentless process, analogous to
// proc_bootstrap's kproc plus the first proc_create_runprogram call.
func (k *Kernel_t) Bootstrap(name string) (*Process, defs.Err_t) {
	pid, err := k.Idents.Assign()
	if err != 0 {
		return nil, err
	}
	p := newProcess(name)
	p.Pid = pid
	k.Table.insert(p)
	return p, 0
}

// Fork creates a child of parent, copying its address space, per
// sys_fork in proc_syscalls.c.
func (k *Kernel_t) Fork(parent *Process) (*Process, defs.Err_t) {
	pid, err := k.Idents.Assign()
	if err != 0 {
		return nil, err
	}

	child := newProcess(parent.Name)
	child.Pid = pid
	child.Cwd = parent.Cwd

	if parent.AS != nil {
		as2, err := parent.AS.Copy()
		if err != 0 {
			k.Idents.Release(pid)
			return nil, err
		}
		child.AS = as2
	}

	parent.AddChild(child)
	k.Table.insert(child)
	return child, 0
}

// Getpid returns p's own identifier.
func (k *Kernel_t) Getpid(p *Process) defs.Pid_t {
	return p.Pid
}

// mkWaitExit packs a plain exit code the way _MKWAIT_EXIT does, so a
// waiting parent's status word distinguishes a normal exit from a
// signal death (not modeled here, so the signalled half is always zero).
func mkWaitExit(code int) int {
	return (code & 0xff) << 8
}

// Exit tears down p's address space, publishes its exit status to any
// waiting parent, and reaps p (and any already-exited descendants) if
// p is already parentless. Grounded on sys__exit plus proc_destroy.
func (k *Kernel_t) Exit(p *Process, code int, start time.Time) {
	p.Lock()
	as := p.AS
	p.AS = nil
	p.Unlock()
	if as != nil {
		as.Destroy()
	}

	p.markExited(mkWaitExit(code), start)
	k.destroy(p)
}

// destroy reaps p if it has no parent left to wait on it, recursing
// into already-exited children and orphaning still-running ones, per
// proc_destroy's parent_proc == NULL branch.
func (k *Kernel_t) destroy(p *Process) {
	p.Lock()
	parentless := p.Parent == nil
	p.Unlock()
	if !parentless {
		return
	}

	for _, c := range p.childSnapshot() {
		c.Lock()
		c.Parent = nil
		exited := c.hasExited()
		c.Unlock()
		if exited {
			k.destroy(c)
		} else {
			k.orphans.Distinct()
		}
	}

	k.Table.remove(p.Pid)
	k.Idents.Release(p.Pid)
}

// Waitpid blocks until the child identified by pid has exited and
// returns its packed exit status, per sys_waitpid.
func (k *Kernel_t) Waitpid(parent *Process, pid defs.Pid_t) (int, defs.Err_t) {
	if pid < limits.PidMin || pid > limits.PidMax {
		return 0, defs.EINVAL
	}
	child := parent.findChild(pid)
	if child == nil {
		return 0, defs.ECHILD
	}
	return child.waitExit(), 0
}

// RegionSpec describes one loadable segment to define in the new address
// space, the same (base, size, permissions) shape the ELF loader
// collaborator hands up to the caller of Execv.
type RegionSpec struct {
	Base      uintptr
	Size      int
	Readable  bool
	Writeable bool
	Execable  bool
}

// ExecResult reports the new program's entry point, argument count, and
// entry stack layout. There is no hosted user memory to write argv bytes
// into, so only the addresses the original copies argv into are computed
// and returned.
type ExecResult struct {
	EntryPoint uintptr
	Argc       int
	StackPtr   uintptr
	ArgvPtrs   []uintptr
}

const ptrSize = 4 // MIPS pointer size; argv slots are ROUNDUP(sizeof(char*), 4)

// Execv replaces p's address space with one built from entry/regions (as
// resolved by the caller's ELF loader collaborator) and lays out argv on
// the new stack exactly as sys_execv's two reverse loops do: strings
// first (high to low, 4-byte aligned), then the pointer array (including
// the NULL terminator) below them. tlbs may be nil in tests that don't
// care about TLB shootdown.
func (k *Kernel_t) Execv(p *Process, tlbs *tlb.Tlb_t, entry uintptr, regions [2]RegionSpec, argv []string) (ExecResult, defs.Err_t) {
	for _, a := range argv {
		if len(a) >= limits.PathMax {
			return ExecResult{}, defs.ENAMETOOLONG
		}
	}

	as := vm.Create(k.Coremap)
	for _, r := range regions {
		if err := as.DefineRegion(r.Base, r.Size, r.Readable, r.Writeable, r.Execable); err != 0 {
			return ExecResult{}, err
		}
	}
	if err := as.PrepareLoad(); err != 0 {
		return ExecResult{}, err
	}
	as.CompleteLoad(tlbs)

	stackptr, _ := as.DefineStack()

	argvAddrs := make([]uintptr, len(argv))
	for i := len(argv) - 1; i >= 0; i-- {
		alen := len(argv[i]) + 1
		aligned := util.Roundup(alen, ptrSize)
		stackptr -= uintptr(aligned)
		argvAddrs[i] = stackptr
	}

	stackptr -= ptrSize // NULL terminator slot
	for i := len(argv) - 1; i >= 0; i-- {
		stackptr -= ptrSize
	}

	old := p.AS
	p.Lock()
	p.AS = as
	p.Unlock()
	if old != nil {
		old.Destroy()
	}

	return ExecResult{EntryPoint: entry, Argc: len(argv), StackPtr: stackptr, ArgvPtrs: argvAddrs}, 0
}
