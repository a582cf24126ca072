package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"vigil/internal/prog"
	"vigil/internal/source"
	"vigil/internal/token"
)

// Hints provide optional capacity suggestions for the table arenas.
type Hints struct{ Vars, Scopes, Funcs uint }

// Table aggregates the symbol arenas and shared resources of one translation
// unit.
type Table struct {
	Vars    *Vars
	Scopes  *Scopes
	Funcs   *Funcs
	Strings *source.Interner

	exprKeys map[exprKeyParts]prog.ExprKey
}

// NewTable builds a fresh table with optional capacity hints.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	varCap, err := safecast.Conv[uint32](h.Vars)
	if err != nil {
		panic(fmt.Errorf("var capacity overflow: %w", err))
	}
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	funcCap, err := safecast.Conv[uint32](h.Funcs)
	if err != nil {
		panic(fmt.Errorf("func capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		Vars:     NewVars(varCap),
		Scopes:   NewScopes(scopeCap),
		Funcs:    NewFuncs(funcCap),
		Strings:  strings,
		exprKeys: make(map[exprKeyParts]prog.ExprKey),
	}
}

// Declare registers a variable in its scope's name map. A redeclaration in
// the same scope shadows the previous id, as the parser reports that case
// separately.
func (t *Table) Declare(scope prog.ScopeID, v Variable) prog.VarID {
	v.Scope = scope
	id := t.Vars.New(v)
	if s := t.Scopes.Get(scope); s != nil {
		s.Names[v.Name] = id
	}
	return id
}

// Resolve looks a name up from the given scope outward.
func (t *Table) Resolve(scope prog.ScopeID, name source.StringID) (prog.VarID, bool) {
	for id := scope; id != prog.NoScopeID; {
		s := t.Scopes.Get(id)
		if s == nil {
			break
		}
		if v, ok := s.Names[name]; ok {
			return v, true
		}
		id = s.Parent
	}
	return prog.NoVarID, false
}

// ScopeEndOf returns the closing brace node of the variable's owning scope.
// Facts about the variable must not survive past it.
func (t *Table) ScopeEndOf(v prog.VarID) prog.NodeID {
	vr := t.Vars.Get(v)
	if vr == nil {
		return prog.NoNodeID
	}
	s := t.Scopes.Get(vr.Scope)
	if s == nil {
		return prog.NoNodeID
	}
	return s.BodyEnd
}

type exprKeyParts struct {
	Tok   token.Kind
	Var   prog.VarID
	Text  source.StringID
	Left  prog.ExprKey
	Right prog.ExprKey
}

// ExprKeyFor interns a structural expression identity. Two calls with equal
// parts return the same key, so equal subexpressions can be matched in O(1).
func (t *Table) ExprKeyFor(tok token.Kind, v prog.VarID, text source.StringID, left, right prog.ExprKey) prog.ExprKey {
	parts := exprKeyParts{Tok: tok, Var: v, Text: text, Left: left, Right: right}
	if k, ok := t.exprKeys[parts]; ok {
		return k
	}
	k := prog.ExprKey(len(t.exprKeys) + 1)
	t.exprKeys[parts] = k
	return k
}
