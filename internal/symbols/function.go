package symbols

import (
	"vigil/internal/prog"
	"vigil/internal/source"
	"vigil/internal/types"
)

// FuncFlags encode properties discovered from the definition or the library
// model.
type FuncFlags uint8

const (
	FuncFlagNoReturn FuncFlags = 1 << iota
	FuncFlagDefined            // has a body in this translation unit
)

// Function describes a function declaration or definition.
type Function struct {
	Name   source.StringID
	Def    prog.NodeID // name node of the definition
	Body   prog.ScopeID
	Params []prog.VarID
	Ret    types.TypeID
	Flags  FuncFlags
}

// Funcs manages allocation of functions.
type Funcs struct {
	arena  *prog.Arena[Function]
	byName map[source.StringID]prog.FuncID
}

// NewFuncs creates the function arena with the provided capacity hint.
func NewFuncs(capHint uint32) *Funcs {
	return &Funcs{
		arena:  prog.NewArena[Function](uint(capHint)),
		byName: make(map[source.StringID]prog.FuncID),
	}
}

// New registers a function. A later definition with the same name takes over
// the registered id so call sites resolve to one record.
func (fs *Funcs) New(f Function) prog.FuncID {
	if id, ok := fs.byName[f.Name]; ok {
		old := fs.Get(id)
		if f.Flags&FuncFlagDefined != 0 {
			*old = f
		}
		return id
	}
	id := prog.FuncID(fs.arena.Allocate(f))
	fs.byName[f.Name] = id
	return id
}

// Get returns the function record, or nil for NoFuncID.
func (fs *Funcs) Get(id prog.FuncID) *Function {
	return fs.arena.Get(uint32(id))
}

// Find resolves a function by name.
func (fs *Funcs) Find(name source.StringID) (prog.FuncID, bool) {
	id, ok := fs.byName[name]
	return id, ok
}

// Len returns the number of functions.
func (fs *Funcs) Len() uint32 { return fs.arena.Len() }

// Each invokes fn for every registered function in definition order.
func (fs *Funcs) Each(fn func(prog.FuncID, *Function) bool) {
	for i := uint32(1); i <= fs.arena.Len(); i++ {
		if !fn(prog.FuncID(i), fs.arena.Get(i)) {
			return
		}
	}
}
