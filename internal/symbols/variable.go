package symbols

import (
	"vigil/internal/prog"
	"vigil/internal/source"
	"vigil/internal/types"
)

// Storage classifies where a variable's value lives, which decides how long
// facts about it may survive and whether unseen code can change it.
type Storage uint8

const (
	StorageInvalid Storage = iota
	StorageLocal
	StorageArgument
	StorageStatic
	StorageGlobal
	StorageMember
)

func (s Storage) String() string {
	switch s {
	case StorageLocal:
		return "local"
	case StorageArgument:
		return "argument"
	case StorageStatic:
		return "static"
	case StorageGlobal:
		return "global"
	case StorageMember:
		return "member"
	default:
		return "invalid"
	}
}

// VarFlags encode misc attributes for quick checks.
type VarFlags uint8

const (
	VarFlagConst VarFlags = 1 << iota
	VarFlagAddressTaken
	VarFlagUsedInLoop
)

// Strings returns a slice of textual flag labels.
func (f VarFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 3)
	if f&VarFlagConst != 0 {
		labels = append(labels, "const")
	}
	if f&VarFlagAddressTaken != 0 {
		labels = append(labels, "address-taken")
	}
	if f&VarFlagUsedInLoop != 0 {
		labels = append(labels, "used-in-loop")
	}
	return labels
}

// Variable describes one declared name. Decl points at the name node of the
// declaration inside the program graph.
type Variable struct {
	Name    source.StringID
	Decl    prog.NodeID
	Scope   prog.ScopeID
	Type    types.TypeID
	Storage Storage
	Flags   VarFlags
}

// IsLocal reports variables whose lifetime is bounded by a scope in the
// current function, arguments included.
func (v *Variable) IsLocal() bool {
	return v.Storage == StorageLocal || v.Storage == StorageArgument
}

// Vars manages allocation of variables.
type Vars struct {
	arena *prog.Arena[Variable]
}

// NewVars creates the variable arena with the provided capacity hint.
func NewVars(capHint uint32) *Vars {
	return &Vars{arena: prog.NewArena[Variable](uint(capHint))}
}

// New registers a variable and returns its id.
func (vs *Vars) New(v Variable) prog.VarID {
	return prog.VarID(vs.arena.Allocate(v))
}

// Get returns the variable record, or nil for NoVarID.
func (vs *Vars) Get(id prog.VarID) *Variable {
	return vs.arena.Get(uint32(id))
}

// Len returns the number of registered variables.
func (vs *Vars) Len() uint32 { return vs.arena.Len() }
