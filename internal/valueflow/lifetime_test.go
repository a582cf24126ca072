package valueflow

import (
	"testing"

	"vigil/internal/token"
	"vigil/internal/value"
)

// pointsIntoLocal строит предикат "указывает в локальное хранилище имени".
func pointsInto(cx *Context, name string, k value.LifetimeKind, s value.LifetimeScope) func(*value.Value) bool {
	return func(v *value.Value) bool {
		return v.IsLifetimeValue() && v.LifetimeKind == k && v.LifetimeScope == s &&
			cx.Graph.Text(v.Ref) == name
	}
}

func TestAddressOfLocalTracked(t *testing.T) {
	cx, _ := analyzeSource(t, "void f() { int x = 1; int *p = &x; int *q = p; }")

	use := mustStream(t, cx.Graph, token.Ident, "p", 2)
	if f := findFact(cx, use, pointsInto(cx, "x", value.LifetimeAddress, value.LifetimeScopeLocal)); f == nil {
		t.Errorf("p after p = &x: no points-into fact for x, facts: %s", factDump(cx, use))
	}
}

// Факт живёт столько, сколько живёт хранилище владельца: внутри блока с x он
// есть, за закрывающей скобкой x его уже нет.
func TestPointsIntoDiesWithOwner(t *testing.T) {
	cx, _ := analyzeSource(t, `
void f(int *q) {
	int *p = q;
	{
		int x = 1;
		p = &x;
		int *r = p;
	}
	int *s = p;
}`)

	inside := mustStream(t, cx.Graph, token.Ident, "p", 3)
	if f := findFact(cx, inside, pointsInto(cx, "x", value.LifetimeAddress, value.LifetimeScopeLocal)); f == nil {
		t.Errorf("p inside the block: no points-into fact for x, facts: %s", factDump(cx, inside))
	}

	outside := mustStream(t, cx.Graph, token.Ident, "p", 4)
	if f := findFact(cx, outside, func(v *value.Value) bool {
		return v.IsLifetimeValue() && cx.Graph.Text(v.Ref) == "x"
	}); f != nil {
		t.Errorf("p after the block must not point into dead x, got %s", f)
	}
}

func TestReturnedAddressOfLocal(t *testing.T) {
	cx, _ := analyzeSource(t, "int *g() { int x = 1; return &x; }")

	amp := mustStream(t, cx.Graph, token.Amp, "", 1)
	if f := findFact(cx, amp, pointsInto(cx, "x", value.LifetimeAddress, value.LifetimeScopeLocal)); f == nil {
		t.Errorf("return &x: no points-into fact on the operand, facts: %s", factDump(cx, amp))
	}
}

// Адрес хранилища вызываемой функции возвращается с пометкой sub-function:
// к моменту использования хранилище уже мертво.
func TestCalleeStorageEscapes(t *testing.T) {
	cx, _ := analyzeSource(t, `
int *h() { int y = 2; return &y; }
void f() { int *p = h(); int *q = p; }`)

	use := mustStream(t, cx.Graph, token.Ident, "p", 2)
	if f := findFact(cx, use, func(v *value.Value) bool {
		return v.IsLifetimeValue() && v.LifetimeScope == value.LifetimeScopeSubFunction
	}); f == nil {
		t.Errorf("p from h(): no sub-function points-into fact, facts: %s", factDump(cx, use))
	}
}

// Возврат, укоренённый в параметре, переадресуется на аргумент вызова:
// id(&x) указывает в x вызывающей стороны, не в хранилище id.
func TestParameterAliasFollowsArgument(t *testing.T) {
	cx, _ := analyzeSource(t, `
int *id(int *a) { return a; }
void f(int *r) { int x = 3; int *p = id(&x); r = p; }`)

	use := mustStream(t, cx.Graph, token.Ident, "p", 2)
	if f := findFact(cx, use, pointsInto(cx, "x", value.LifetimeAddress, value.LifetimeScopeLocal)); f == nil {
		t.Errorf("p from id(&x): no points-into fact for caller's x, facts: %s", factDump(cx, use))
	}
}

func TestContainerBufferLifetime(t *testing.T) {
	cx, _ := analyzeSource(t,
		"void f(vector<int> v) { int *p = v.data(); int *q = p; }")

	use := mustStream(t, cx.Graph, token.Ident, "p", 2)
	if f := findFact(cx, use, pointsInto(cx, "v", value.LifetimeObject, value.LifetimeScopeArgument)); f == nil {
		t.Errorf("p from v.data(): no points-into fact for v, facts: %s", factDump(cx, use))
	}
}

func TestReassignmentDropsPointsInto(t *testing.T) {
	cx, _ := analyzeSource(t,
		"void f(int *q) { int x = 1; int *p = &x; p = q; int *r = p; }")

	use := mustStream(t, cx.Graph, token.Ident, "p", 3)
	if f := findFact(cx, use, func(v *value.Value) bool {
		return v.IsLifetimeValue() && cx.Graph.Text(v.Ref) == "x"
	}); f != nil {
		t.Errorf("reassigned p must not keep pointing into x, got %s", f)
	}
}
