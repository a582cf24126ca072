package symbols

import (
	"vigil/internal/prog"
	"vigil/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeGlobal             // translation unit root
	ScopeFunction           // function body
	ScopeBlock              // bare { } block
	ScopeIf
	ScopeElse
	ScopeWhile
	ScopeFor
	ScopeDo
	ScopeSwitch
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeIf:
		return "if"
	case ScopeElse:
		return "else"
	case ScopeWhile:
		return "while"
	case ScopeFor:
		return "for"
	case ScopeDo:
		return "do"
	case ScopeSwitch:
		return "switch"
	default:
		return "invalid"
	}
}

// IsLoop reports scopes whose body may execute repeatedly.
func (k ScopeKind) IsLoop() bool {
	switch k {
	case ScopeWhile, ScopeFor, ScopeDo:
		return true
	default:
		return false
	}
}

// Scope models a lexical scope with a parent-child hierarchy. BodyStart and
// BodyEnd point at the brace nodes delimiting it in the program graph; fact
// propagation for a variable stops at the BodyEnd of its owning scope.
type Scope struct {
	Kind      ScopeKind
	Parent    prog.ScopeID
	Function  prog.FuncID // enclosing function, NoFuncID for globals
	BodyStart prog.NodeID
	BodyEnd   prog.NodeID
	Span      source.Span
	Names     map[source.StringID]prog.VarID
	Children  []prog.ScopeID
}

// Scopes manages allocation of scopes.
type Scopes struct {
	arena *prog.Arena[Scope]
}

// NewScopes creates the scope arena with the provided capacity hint.
func NewScopes(capHint uint32) *Scopes {
	return &Scopes{arena: prog.NewArena[Scope](uint(capHint))}
}

// New allocates a child scope under parent.
func (ss *Scopes) New(kind ScopeKind, parent prog.ScopeID, fn prog.FuncID, span source.Span) prog.ScopeID {
	id := prog.ScopeID(ss.arena.Allocate(Scope{
		Kind:     kind,
		Parent:   parent,
		Function: fn,
		Span:     span,
		Names:    make(map[source.StringID]prog.VarID),
	}))
	if p := ss.Get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Get returns the scope record, or nil for NoScopeID.
func (ss *Scopes) Get(id prog.ScopeID) *Scope {
	return ss.arena.Get(uint32(id))
}

// Len returns the number of scopes.
func (ss *Scopes) Len() uint32 { return ss.arena.Len() }

// IsDescendant reports whether inner is scope or nested anywhere inside it.
func (ss *Scopes) IsDescendant(inner, scope prog.ScopeID) bool {
	for id := inner; id != prog.NoScopeID; {
		if id == scope {
			return true
		}
		s := ss.Get(id)
		if s == nil {
			return false
		}
		id = s.Parent
	}
	return false
}

// InnermostLoop climbs from the given scope to the nearest enclosing loop.
func (ss *Scopes) InnermostLoop(id prog.ScopeID) prog.ScopeID {
	for ; id != prog.NoScopeID; id = ss.Get(id).Parent {
		if ss.Get(id).Kind.IsLoop() {
			return id
		}
	}
	return prog.NoScopeID
}
