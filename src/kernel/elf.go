package kernel

import "github.com/haiyixx/os161-1.99/src/defs"

// Segment is one loadable region an ELFLoader hands back to Execv: base
// address, page count, and permissions, the same shape DefineRegion
// already takes (dumbvm.c supports exactly two of these per address
// space).
type Segment struct {
	Base      uintptr
	Npages    int
	Readable  bool
	Writeable bool
	Execable  bool
}

// ELFLoader is the out-of-scope executable loader collaborator (spec.md
// §1: "the ELF loader... [is] out of scope"). It produces the
// (entry_point, segments) pair Execv needs without this nucleus ever
// parsing a real binary format.
type ELFLoader interface {
	Load(path string) (entry uintptr, segments []Segment, err defs.Err_t)
}

// FlatELFLoader is the default ELFLoader. Since parsing an actual ELF
// file is out of scope, it synthesizes the fixed two-segment layout
// (text then data) dumbvm.c's own region limit requires, keyed only by
// path non-emptiness, so Execv always consults a real collaborator for
// layout/entry instead of hardcoding one inline.
type FlatELFLoader struct{}

func (FlatELFLoader) Load(path string) (uintptr, []Segment, defs.Err_t) {
	if path == "" {
		return 0, nil, defs.EINVAL
	}
	text := Segment{Base: 0x400000, Npages: 1, Readable: true, Execable: true}
	data := Segment{Base: 0x500000, Npages: 1, Readable: true, Writeable: true}
	return text.Base, []Segment{text, data}, 0
}
