package proc

import (
	"github.com/haiyixx/os161-1.99/src/defs"
	"github.com/haiyixx/os161-1.99/src/hashtable"
)

// Table_t maps pid to *Process, reusing the teacher's concurrent
// hashtable instead of proc.c's hand-rolled array-backed pid pool.
type Table_t struct {
	ht *hashtable.Hashtable_t
}

// NewTable returns an empty process table.
func NewTable() *Table_t {
	return &Table_t{ht: hashtable.MkHash(64)}
}

func (t *Table_t) insert(p *Process) {
	t.ht.Set(int(p.Pid), p)
}

func (t *Table_t) remove(pid defs.Pid_t) {
	t.ht.Del(int(pid))
}

// Lookup returns the process registered under pid, if any.
func (t *Table_t) Lookup(pid defs.Pid_t) (*Process, bool) {
	v, ok := t.ht.Get(int(pid))
	if !ok {
		return nil, false
	}
	return v.(*Process), true
}

// Len returns the number of live processes in the table.
func (t *Table_t) Len() int {
	return t.ht.Size()
}

// Snapshot returns every process currently registered, for diagnostics.
func (t *Table_t) Snapshot() []*Process {
	pairs := t.ht.Elems()
	out := make([]*Process, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, pair.Value.(*Process))
	}
	return out
}
