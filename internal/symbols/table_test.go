package symbols

import (
	"testing"

	"vigil/internal/prog"
	"vigil/internal/source"
	"vigil/internal/token"
)

func newTestTable() *Table {
	return NewTable(Hints{}, nil)
}

func TestDeclareAndResolve(t *testing.T) {
	tbl := newTestTable()
	global := tbl.Scopes.New(ScopeGlobal, prog.NoScopeID, prog.NoFuncID, source.Span{})
	fnScope := tbl.Scopes.New(ScopeFunction, global, prog.FuncID(1), source.Span{})
	block := tbl.Scopes.New(ScopeBlock, fnScope, prog.FuncID(1), source.Span{})

	x := tbl.Strings.Intern("x")
	y := tbl.Strings.Intern("y")

	xOuter := tbl.Declare(fnScope, Variable{Name: x, Storage: StorageLocal})
	yID := tbl.Declare(block, Variable{Name: y, Storage: StorageLocal})

	if got, ok := tbl.Resolve(block, y); !ok || got != yID {
		t.Errorf("Resolve(block, y) = %d, %v", got, ok)
	}
	// x виден из вложенного блока через родителя
	if got, ok := tbl.Resolve(block, x); !ok || got != xOuter {
		t.Errorf("Resolve(block, x) = %d, %v", got, ok)
	}
	// y не виден снаружи блока
	if _, ok := tbl.Resolve(fnScope, y); ok {
		t.Error("y must not resolve outside its block")
	}
	if _, ok := tbl.Resolve(global, tbl.Strings.Intern("ghost")); ok {
		t.Error("unknown name must not resolve")
	}
}

func TestShadowing(t *testing.T) {
	tbl := newTestTable()
	global := tbl.Scopes.New(ScopeGlobal, prog.NoScopeID, prog.NoFuncID, source.Span{})
	inner := tbl.Scopes.New(ScopeBlock, global, prog.NoFuncID, source.Span{})

	x := tbl.Strings.Intern("x")
	outer := tbl.Declare(global, Variable{Name: x, Storage: StorageGlobal})
	shadow := tbl.Declare(inner, Variable{Name: x, Storage: StorageLocal})

	if outer == shadow {
		t.Fatal("shadowing must create a fresh VarID")
	}
	if got, _ := tbl.Resolve(inner, x); got != shadow {
		t.Errorf("inner resolve = %d, want shadow %d", got, shadow)
	}
	if got, _ := tbl.Resolve(global, x); got != outer {
		t.Errorf("outer resolve = %d, want outer %d", got, outer)
	}
}

func TestScopeHierarchy(t *testing.T) {
	tbl := newTestTable()
	global := tbl.Scopes.New(ScopeGlobal, prog.NoScopeID, prog.NoFuncID, source.Span{})
	fn := tbl.Scopes.New(ScopeFunction, global, prog.FuncID(1), source.Span{})
	loop := tbl.Scopes.New(ScopeWhile, fn, prog.FuncID(1), source.Span{})
	body := tbl.Scopes.New(ScopeBlock, loop, prog.FuncID(1), source.Span{})

	if !tbl.Scopes.IsDescendant(body, global) || !tbl.Scopes.IsDescendant(body, loop) {
		t.Error("descendant checks failed")
	}
	if tbl.Scopes.IsDescendant(fn, loop) {
		t.Error("fn is not inside loop")
	}
	if got := tbl.Scopes.InnermostLoop(body); got != loop {
		t.Errorf("InnermostLoop = %d, want %d", got, loop)
	}
	if got := tbl.Scopes.InnermostLoop(fn); got != prog.NoScopeID {
		t.Errorf("InnermostLoop outside loops = %d", got)
	}

	parent := tbl.Scopes.Get(fn)
	if len(parent.Children) != 1 || parent.Children[0] != loop {
		t.Error("children links not maintained")
	}
}

func TestFuncRegistry(t *testing.T) {
	tbl := newTestTable()
	name := tbl.Strings.Intern("f")

	// сначала прототип, затем определение перенимает тот же id
	proto := tbl.Funcs.New(Function{Name: name})
	def := tbl.Funcs.New(Function{Name: name, Flags: FuncFlagDefined, Body: prog.ScopeID(2)})
	if proto != def {
		t.Fatalf("definition must reuse the prototype id: %d vs %d", proto, def)
	}
	f := tbl.Funcs.Get(def)
	if f.Flags&FuncFlagDefined == 0 || f.Body != prog.ScopeID(2) {
		t.Error("definition did not take over the record")
	}

	if id, ok := tbl.Funcs.Find(name); !ok || id != def {
		t.Errorf("Find = %d, %v", id, ok)
	}
	if _, ok := tbl.Funcs.Find(tbl.Strings.Intern("missing")); ok {
		t.Error("unknown function must not resolve")
	}

	count := 0
	tbl.Funcs.Each(func(prog.FuncID, *Function) bool {
		count++
		return true
	})
	if count != 1 {
		t.Errorf("Each visited %d, want 1", count)
	}
}

func TestScopeEndOf(t *testing.T) {
	tbl := newTestTable()
	global := tbl.Scopes.New(ScopeGlobal, prog.NoScopeID, prog.NoFuncID, source.Span{})
	fn := tbl.Scopes.New(ScopeFunction, global, prog.FuncID(1), source.Span{})
	tbl.Scopes.Get(fn).BodyStart = prog.NodeID(10)
	tbl.Scopes.Get(fn).BodyEnd = prog.NodeID(42)

	v := tbl.Declare(fn, Variable{Name: tbl.Strings.Intern("x"), Storage: StorageLocal})
	if got := tbl.ScopeEndOf(v); got != prog.NodeID(42) {
		t.Errorf("ScopeEndOf = %d, want 42", got)
	}
	if got := tbl.ScopeEndOf(prog.NoVarID); got != prog.NoNodeID {
		t.Errorf("ScopeEndOf(NoVarID) = %d", got)
	}
}

func TestExprKeys(t *testing.T) {
	tbl := newTestTable()
	x := prog.VarID(1)
	y := prog.VarID(2)

	kx := tbl.ExprKeyFor(token.Ident, x, source.NoStringID, prog.NoExprKey, prog.NoExprKey)
	kx2 := tbl.ExprKeyFor(token.Ident, x, source.NoStringID, prog.NoExprKey, prog.NoExprKey)
	ky := tbl.ExprKeyFor(token.Ident, y, source.NoStringID, prog.NoExprKey, prog.NoExprKey)

	if kx != kx2 {
		t.Error("same parts must intern to the same key")
	}
	if kx == ky {
		t.Error("different vars must get different keys")
	}

	// p->next и p->data различаются текстом члена
	next := tbl.Strings.Intern("next")
	data := tbl.Strings.Intern("data")
	kNext := tbl.ExprKeyFor(token.Arrow, prog.NoVarID, next, kx, prog.NoExprKey)
	kData := tbl.ExprKeyFor(token.Arrow, prog.NoVarID, data, kx, prog.NoExprKey)
	kNext2 := tbl.ExprKeyFor(token.Arrow, prog.NoVarID, next, kx, prog.NoExprKey)
	if kNext == kData {
		t.Error("different members must get different keys")
	}
	if kNext != kNext2 {
		t.Error("same member chain must intern stably")
	}
}

func TestStorageAndFlags(t *testing.T) {
	local := Variable{Storage: StorageLocal}
	arg := Variable{Storage: StorageArgument}
	glob := Variable{Storage: StorageGlobal}
	if !local.IsLocal() || !arg.IsLocal() || glob.IsLocal() {
		t.Error("IsLocal classification wrong")
	}

	f := VarFlagConst | VarFlagAddressTaken
	labels := f.Strings()
	if len(labels) != 2 || labels[0] != "const" || labels[1] != "address-taken" {
		t.Errorf("flag labels = %v", labels)
	}
	if (VarFlags(0)).Strings() != nil {
		t.Error("zero flags must return nil labels")
	}
}
