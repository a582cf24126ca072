package parser

import (
	"testing"

	"vigil/internal/diag"
	"vigil/internal/prog"
	"vigil/internal/symbols"
	"vigil/internal/token"
)

// scopesOfKind собирает все скоупы данного вида.
func scopesOfKind(res Result, kind symbols.ScopeKind) []prog.ScopeID {
	var out []prog.ScopeID
	for i := uint32(1); i <= res.Table.Scopes.Len(); i++ {
		id := prog.ScopeID(i)
		if res.Table.Scopes.Get(id).Kind == kind {
			out = append(out, id)
		}
	}
	return out
}

func TestIfElseAnchorsAndScopes(t *testing.T) {
	res := mustParse(t, "void f(int a) { if (a > 0) { a = 1; } else { a = 2; } }")

	ifID := mustFindNode(t, res.Graph, token.KwIf, "")
	cond := res.Graph.Get(res.Graph.Get(ifID).Left)
	if cond == nil || cond.Tok != token.Gt {
		t.Fatal("if must anchor its condition as left operand")
	}

	ifs := scopesOfKind(res, symbols.ScopeIf)
	elses := scopesOfKind(res, symbols.ScopeElse)
	if len(ifs) != 1 || len(elses) != 1 {
		t.Fatalf("scopes: if=%d else=%d, want 1/1", len(ifs), len(elses))
	}
	is := res.Table.Scopes.Get(ifs[0])
	es := res.Table.Scopes.Get(elses[0])
	if is.Parent != es.Parent {
		t.Error("both branches must share the function body parent")
	}
	if is.BodyStart == prog.NoNodeID || is.BodyEnd == prog.NoNodeID {
		t.Error("if branch must have brace bounds")
	}
	if res.Graph.Get(is.BodyStart).Link != is.BodyEnd {
		t.Error("branch braces must be link-paired")
	}
}

func TestBracelessBodyGetsImplicitBraces(t *testing.T) {
	res := mustParse(t, "void f(int a) { if (a) a = 1; }")

	ifs := scopesOfKind(res, symbols.ScopeIf)
	if len(ifs) != 1 {
		t.Fatalf("if scopes = %d, want 1", len(ifs))
	}
	s := res.Table.Scopes.Get(ifs[0])
	open := res.Graph.Get(s.BodyStart)
	closing := res.Graph.Get(s.BodyEnd)
	if open == nil || closing == nil {
		t.Fatal("single-statement branch must still own brace bounds")
	}
	if !open.Flags.Has(prog.FlagImplicit) || !closing.Flags.Has(prog.FlagImplicit) {
		t.Error("synthesized braces must be flagged implicit")
	}
	if open.Tok != token.LBrace || closing.Tok != token.RBrace {
		t.Error("bounds must be brace nodes")
	}
	if open.Link != s.BodyEnd {
		t.Error("implicit braces must be link-paired")
	}

	// вложенная инструкция оказывается между скобками
	assign := mustFindNode(t, res.Graph, token.Assign, "")
	if res.Graph.Get(assign).Scope != ifs[0] {
		t.Error("the controlled statement must live in the branch scope")
	}
}

func TestNestedBracelessIf(t *testing.T) {
	res := mustParse(t, "void f(int a, int b) { if (a) if (b) a = 1; }")

	ifs := scopesOfKind(res, symbols.ScopeIf)
	if len(ifs) != 2 {
		t.Fatalf("if scopes = %d, want 2", len(ifs))
	}
	// скобки не перекрещиваются: внутренняя пара лежит целиком во внешней
	outer := res.Table.Scopes.Get(ifs[0])
	inner := res.Table.Scopes.Get(ifs[1])
	if !res.Table.Scopes.IsDescendant(ifs[1], ifs[0]) {
		outer, inner = inner, outer
	}
	pos := map[prog.NodeID]int{}
	i := 0
	for id := res.Graph.First(); id != prog.NoNodeID; id = res.Graph.Get(id).Next {
		pos[id] = i
		i++
	}
	if !(pos[outer.BodyStart] < pos[inner.BodyStart] &&
		pos[inner.BodyStart] < pos[inner.BodyEnd] &&
		pos[inner.BodyEnd] < pos[outer.BodyEnd]) {
		t.Error("implicit brace pairs must nest, not interleave")
	}
}

func TestElseIfChain(t *testing.T) {
	res := mustParse(t, "void f(int a) { if (a == 1) { } else if (a == 2) { } else { } }")

	ifs := scopesOfKind(res, symbols.ScopeIf)
	elses := scopesOfKind(res, symbols.ScopeElse)
	if len(ifs) != 2 {
		t.Errorf("if scopes = %d, want 2", len(ifs))
	}
	if len(elses) != 1 {
		t.Errorf("else scopes = %d, want 1 (terminal branch only)", len(elses))
	}
}

func TestWhileAnchor(t *testing.T) {
	res := mustParse(t, "void f(int a) { while (a > 0) { a = a - 1; } }")

	w := mustFindNode(t, res.Graph, token.KwWhile, "")
	cond := res.Graph.Get(res.Graph.Get(w).Left)
	if cond == nil || cond.Tok != token.Gt {
		t.Fatal("while must anchor its condition")
	}
	loops := scopesOfKind(res, symbols.ScopeWhile)
	if len(loops) != 1 {
		t.Fatalf("while scopes = %d, want 1", len(loops))
	}
	if !res.Table.Scopes.Get(loops[0]).Kind.IsLoop() {
		t.Error("while scope must classify as a loop")
	}
}

func TestDoWhileAnchor(t *testing.T) {
	res := mustParse(t, "void f(int a) { do { a = a - 1; } while (a > 0); }")

	// условие висит на замыкающем while
	w := mustFindNode(t, res.Graph, token.KwWhile, "")
	cond := res.Graph.Get(res.Graph.Get(w).Left)
	if cond == nil || cond.Tok != token.Gt {
		t.Fatal("do-while must anchor the condition on the trailing while")
	}
	loops := scopesOfKind(res, symbols.ScopeDo)
	if len(loops) != 1 {
		t.Fatalf("do scopes = %d, want 1", len(loops))
	}
}

func TestForHeaderAndScope(t *testing.T) {
	res := mustParse(t, "void f() { for (int i = 0; i < 10; ++i) { int x = i; } }")

	forID := mustFindNode(t, res.Graph, token.KwFor, "")
	fn := res.Graph.Get(forID)
	cond := res.Graph.Get(fn.Left)
	if cond == nil || cond.Tok != token.Lt {
		t.Fatal("for must hold the condition as left operand")
	}
	step := res.Graph.Get(fn.Right)
	if step == nil || step.Tok != token.PlusPlus {
		t.Fatal("for must hold the step as right operand")
	}

	fors := scopesOfKind(res, symbols.ScopeFor)
	if len(fors) != 1 {
		t.Fatalf("for scopes = %d, want 1", len(fors))
	}
	i := res.Table.Vars.Get(findVar(t, res, "i"))
	if i.Scope != fors[0] {
		t.Errorf("loop counter scope = %v, want the for scope %v", i.Scope, fors[0])
	}
	// счётчик умирает на закрывающей скобке тела
	end := res.Table.ScopeEndOf(findVar(t, res, "i"))
	if end == prog.NoNodeID || res.Graph.Get(end).Tok != token.RBrace {
		t.Fatal("for counter must die at the body's closing brace")
	}
	if end != res.Table.Scopes.Get(fors[0]).BodyEnd {
		t.Error("counter scope end must be the loop body end")
	}
}

func TestForEmptyHeader(t *testing.T) {
	res := mustParse(t, "void f() { for (;;) { break; } }")
	forID := mustFindNode(t, res.Graph, token.KwFor, "")
	fn := res.Graph.Get(forID)
	if fn.Left != prog.NoNodeID || fn.Right != prog.NoNodeID {
		t.Error("for(;;) must anchor nothing")
	}
}

func TestSwitchCaseAnchors(t *testing.T) {
	res := mustParse(t, `
void f(int a) {
	switch (a) {
	case 1:
		a = 2;
		break;
	default:
		a = 3;
	}
}`)

	sw := mustFindNode(t, res.Graph, token.KwSwitch, "")
	cond := res.Graph.Get(res.Graph.Get(sw).Left)
	if cond == nil || res.Graph.Text(res.Graph.Get(sw).Left) != "a" {
		t.Fatal("switch must anchor its subject")
	}
	c := mustFindNode(t, res.Graph, token.KwCase, "")
	if res.Graph.Text(res.Graph.Get(c).Left) != "1" {
		t.Error("case must anchor its label constant")
	}
	if len(scopesOfKind(res, symbols.ScopeSwitch)) != 1 {
		t.Error("switch body must own a scope")
	}
}

func TestReturnAnchor(t *testing.T) {
	res := mustParse(t, "int f() { return 40 + 2; }")
	ret := mustFindNode(t, res.Graph, token.KwReturn, "")
	v := res.Graph.Get(res.Graph.Get(ret).Left)
	if v == nil || v.Tok != token.Plus {
		t.Fatal("return must anchor its expression")
	}
}

func TestGotoAndLabel(t *testing.T) {
	res := mustParse(t, "void f() { goto done; done: return; }")
	if res.Bag.Len() != 0 {
		t.Fatalf("goto/label must parse clean: %s", diagnosticsSummary(res.Bag))
	}
}

func TestStrayElse(t *testing.T) {
	res := parseSource(t, "void f() { else; }")
	if !hasCode(res.Bag, diag.SynStrayElse) {
		t.Errorf("want stray-else diagnostic, got: %s", diagnosticsSummary(res.Bag))
	}
}

func TestRecoveryAfterBadInitializer(t *testing.T) {
	res := parseSource(t, "int x = ;\nint y = 2;")

	if !hasCode(res.Bag, diag.SynExpectExpression) {
		t.Fatalf("want expect-expression diagnostic, got: %s", diagnosticsSummary(res.Bag))
	}
	// после ресинка следующая декларация разобрана полноценно
	y := res.Table.Vars.Get(findVar(t, res, "y"))
	if y.Storage != symbols.StorageGlobal {
		t.Error("recovery must not derail the next declaration")
	}
}

func TestRecoveryInsideFunction(t *testing.T) {
	res := parseSource(t, "void f() { int a = 1 + ; int b = 2; }\nint g() { return 3; }")

	if res.Bag.Len() == 0 {
		t.Fatal("malformed initializer must produce a diagnostic")
	}
	findVar(t, res, "b")
	if _, ok := res.Table.Funcs.Find(res.Graph.Strings.Intern("g")); !ok {
		t.Error("the following function must still be registered")
	}
}

func TestUnterminatedScope(t *testing.T) {
	res := parseSource(t, "void f() { int x = 1;")

	if !hasCode(res.Bag, diag.SynUnterminatedScope) {
		t.Fatalf("want unterminated-scope diagnostic, got: %s", diagnosticsSummary(res.Bag))
	}
	fid, ok := res.Table.Funcs.Find(res.Graph.Strings.Intern("f"))
	if !ok {
		t.Fatal("function must still be registered")
	}
	body := res.Table.Scopes.Get(res.Table.Funcs.Get(fid).Body)
	if body.BodyEnd == prog.NoNodeID {
		t.Fatal("truncated body must still have an end brace")
	}
	if !res.Graph.Get(body.BodyEnd).Flags.Has(prog.FlagImplicit) {
		t.Error("materialized end brace must be flagged implicit")
	}
}

func TestMissingSemicolon(t *testing.T) {
	res := parseSource(t, "void f() { int a = 1 int b = 2; }")
	if !hasCode(res.Bag, diag.SynExpectSemicolon) {
		t.Errorf("want expect-semicolon diagnostic, got: %s", diagnosticsSummary(res.Bag))
	}
}

func TestLocalStructAndEnum(t *testing.T) {
	res := mustParse(t, `
void f() {
	struct P { int v; };
	enum E { A, B };
	struct P p;
	int x = p.v;
}`)
	if res.Bag.Len() != 0 {
		t.Fatalf("local type definitions must parse clean: %s", diagnosticsSummary(res.Bag))
	}
	dot := mustFindNode(t, res.Graph, token.Dot, "")
	if res.Graph.Get(dot).Type != res.Types.Builtins().Int {
		t.Error("field access through a local struct must type as int")
	}
}

func TestConditionScopePlacement(t *testing.T) {
	// узлы условия штампуются объемлющим скоупом, не скоупом ветки
	res := mustParse(t, "void f(int a) { if (a > 0) { a = 1; } }")

	ifID := mustFindNode(t, res.Graph, token.KwIf, "")
	condID := res.Graph.Get(ifID).Left
	fid, _ := res.Table.Funcs.Find(res.Graph.Strings.Intern("f"))
	body := res.Table.Funcs.Get(fid).Body
	if res.Graph.Get(condID).Scope != body {
		t.Error("condition nodes belong to the enclosing scope")
	}
	ifs := scopesOfKind(res, symbols.ScopeIf)
	if len(ifs) == 1 && res.Graph.Get(condID).Scope == ifs[0] {
		t.Error("condition must not be stamped with the branch scope")
	}
}
