package parser

import (
	"testing"

	"vigil/internal/diag"
	"vigil/internal/prog"
	"vigil/internal/symbols"
	"vigil/internal/token"
	"vigil/internal/types"
)

func TestGlobalDeclaration(t *testing.T) {
	res := mustParse(t, "int x = 3 + 4;")

	v := findVar(t, res, "x")
	vr := res.Table.Vars.Get(v)
	if vr.Storage != symbols.StorageGlobal {
		t.Errorf("storage = %v, want global", vr.Storage)
	}
	b := res.Types.Builtins()
	if vr.Type != b.Int {
		t.Errorf("type = %v, want int", vr.Type)
	}

	eq := mustFindNode(t, res.Graph, token.Assign, "")
	eqn := res.Graph.Get(eq)
	nm := res.Graph.Get(eqn.Left)
	if nm == nil || nm.Var != v {
		t.Fatalf("assign left must be the declared name")
	}
	plus := res.Graph.Get(eqn.Right)
	if plus == nil || plus.Tok != token.Plus {
		t.Fatalf("assign right must be '+'")
	}
	if res.Graph.Text(plus.Left) != "3" || res.Graph.Text(plus.Right) != "4" {
		t.Errorf("operands = %q %q, want 3 4",
			res.Graph.Text(plus.Left), res.Graph.Text(plus.Right))
	}
	if plus.Type != b.Int {
		t.Errorf("'+' type = %v, want int", plus.Type)
	}
	if plus.Expr == prog.NoExprKey {
		t.Error("'+' over literals must carry an expression key")
	}
	if eqn.Expr != prog.NoExprKey {
		t.Error("assignment must not carry an expression key")
	}
}

func TestDeclaratorShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, res Result)
	}{
		{
			"pointer", "int *p;",
			func(t *testing.T, res Result) {
				vr := res.Table.Vars.Get(findVar(t, res, "p"))
				ty, _ := res.Types.Lookup(vr.Type)
				if ty.Kind != types.KindPointer || ty.Elem != res.Types.Builtins().Int {
					t.Errorf("type = %+v, want pointer to int", ty)
				}
			},
		},
		{
			"array", "int a[10];",
			func(t *testing.T, res Result) {
				vr := res.Table.Vars.Get(findVar(t, res, "a"))
				ty, _ := res.Types.Lookup(vr.Type)
				if ty.Kind != types.KindArray || ty.Count != 10 {
					t.Errorf("type = %+v, want array of 10", ty)
				}
			},
		},
		{
			"matrix", "int m[2][3];",
			func(t *testing.T, res Result) {
				vr := res.Table.Vars.Get(findVar(t, res, "m"))
				outer, _ := res.Types.Lookup(vr.Type)
				if outer.Kind != types.KindArray || outer.Count != 2 {
					t.Fatalf("outer = %+v, want array of 2", outer)
				}
				inner, _ := res.Types.Lookup(outer.Elem)
				if inner.Kind != types.KindArray || inner.Count != 3 {
					t.Errorf("inner = %+v, want array of 3", inner)
				}
			},
		},
		{
			"unsigned_long", "unsigned long n;",
			func(t *testing.T, res Result) {
				vr := res.Table.Vars.Get(findVar(t, res, "n"))
				if vr.Type != res.Types.Builtins().ULong {
					t.Errorf("type = %v, want unsigned long", vr.Type)
				}
			},
		},
		{
			"const_flag", "const int c = 1;",
			func(t *testing.T, res Result) {
				vr := res.Table.Vars.Get(findVar(t, res, "c"))
				if vr.Flags&symbols.VarFlagConst == 0 {
					t.Error("const variable must carry the const flag")
				}
			},
		},
		{
			"static_storage", "static int s;",
			func(t *testing.T, res Result) {
				vr := res.Table.Vars.Get(findVar(t, res, "s"))
				if vr.Storage != symbols.StorageStatic {
					t.Errorf("storage = %v, want static", vr.Storage)
				}
			},
		},
		{
			"comma_declarators", "int a, b = 2, *c;",
			func(t *testing.T, res Result) {
				findVar(t, res, "a")
				findVar(t, res, "b")
				vr := res.Table.Vars.Get(findVar(t, res, "c"))
				ty, _ := res.Types.Lookup(vr.Type)
				if ty.Kind != types.KindPointer {
					t.Errorf("c must be a pointer, got %+v", ty)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, mustParse(t, tt.input))
		})
	}
}

func TestFunctionDefinition(t *testing.T) {
	res := mustParse(t, "int add(int a, int b) { return a + b; }")

	fid, ok := res.Table.Funcs.Find(res.Graph.Strings.Intern("add"))
	if !ok {
		t.Fatal("function add not registered")
	}
	fn := res.Table.Funcs.Get(fid)
	if fn.Flags&symbols.FuncFlagDefined == 0 {
		t.Error("definition must carry the defined flag")
	}
	if fn.Ret != res.Types.Builtins().Int {
		t.Errorf("return type = %v, want int", fn.Ret)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("params = %d, want 2", len(fn.Params))
	}
	for i, pid := range fn.Params {
		pv := res.Table.Vars.Get(pid)
		if pv.Storage != symbols.StorageArgument {
			t.Errorf("param %d storage = %v, want argument", i, pv.Storage)
		}
		if pv.Scope != fn.Body {
			t.Errorf("param %d scope = %v, want function body %v", i, pv.Scope, fn.Body)
		}
	}
	body := res.Table.Scopes.Get(fn.Body)
	if body.Kind != symbols.ScopeFunction {
		t.Errorf("body kind = %v, want function", body.Kind)
	}
	if body.BodyStart == prog.NoNodeID || body.BodyEnd == prog.NoNodeID {
		t.Error("function body must have brace bounds")
	}

	// return держит выражение левым операндом
	ret := mustFindNode(t, res.Graph, token.KwReturn, "")
	sum := res.Graph.Get(res.Graph.Get(ret).Left)
	if sum == nil || sum.Tok != token.Plus {
		t.Fatal("return must anchor the a+b expression")
	}
	if sum.Expr == prog.NoExprKey {
		t.Error("a+b over parameters must carry an expression key")
	}
}

func TestPrototypeThenDefinition(t *testing.T) {
	res := mustParse(t, "int f(int x);\nint f(int x) { return x; }")

	fid, ok := res.Table.Funcs.Find(res.Graph.Strings.Intern("f"))
	if !ok {
		t.Fatal("function f not registered")
	}
	fn := res.Table.Funcs.Get(fid)
	if fn.Flags&symbols.FuncFlagDefined == 0 {
		t.Error("later definition must take over the prototype record")
	}
	if fn.Body == prog.NoScopeID {
		t.Error("definition must attach a body scope")
	}
}

func TestLocalScopes(t *testing.T) {
	res := mustParse(t, "void f() { int x = 1; { int y = 2; } }")

	x := res.Table.Vars.Get(findVar(t, res, "x"))
	y := res.Table.Vars.Get(findVar(t, res, "y"))
	if x.Storage != symbols.StorageLocal || y.Storage != symbols.StorageLocal {
		t.Error("both variables must be locals")
	}
	if x.Scope == y.Scope {
		t.Error("inner block must own a distinct scope")
	}
	inner := res.Table.Scopes.Get(y.Scope)
	if inner.Parent != x.Scope {
		t.Errorf("inner scope parent = %v, want %v", inner.Parent, x.Scope)
	}
	if inner.Kind != symbols.ScopeBlock {
		t.Errorf("inner kind = %v, want block", inner.Kind)
	}

	// конец жизни y — закрывающая скобка вложенного блока
	end := res.Table.ScopeEndOf(findVar(t, res, "y"))
	if end == prog.NoNodeID {
		t.Fatal("ScopeEndOf(y) must point at a brace node")
	}
	if res.Graph.Get(end).Tok != token.RBrace {
		t.Error("scope end must be a closing brace")
	}
	if end == res.Table.Scopes.Get(x.Scope).BodyEnd {
		t.Error("y must die before the function body closes")
	}
}

func TestShadowing(t *testing.T) {
	res := mustParse(t, "int x; void f() { int x = 1; { int x = 2; } }")

	sid := res.Graph.Strings.Intern("x")
	count := 0
	for i := uint32(1); i <= res.Table.Vars.Len(); i++ {
		if res.Table.Vars.Get(prog.VarID(i)).Name == sid {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("declared %d x's, want 3", count)
	}
}

func TestDuplicateInScope(t *testing.T) {
	res := parseSource(t, "void f() { int x; int x; }")
	if !hasCode(res.Bag, diag.SynDuplicateName) {
		t.Errorf("want duplicate-name diagnostic, got: %s", diagnosticsSummary(res.Bag))
	}
}

func TestStructDefinitionAndFieldAccess(t *testing.T) {
	res := mustParse(t, `
struct Point { int x; int y; };
struct Point g;
int a = g.x;
`)
	b := res.Types.Builtins()

	vr := res.Table.Vars.Get(findVar(t, res, "g"))
	info, ok := res.Types.StructInfo(vr.Type)
	if !ok {
		t.Fatal("g must have a struct type")
	}
	if len(info.Fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(info.Fields))
	}
	if info.Fields[0].Type != b.Int || info.Fields[1].Type != b.Int {
		t.Error("both fields must be int")
	}

	dot := mustFindNode(t, res.Graph, token.Dot, "")
	dn := res.Graph.Get(dot)
	if dn.Type != b.Int {
		t.Errorf("g.x type = %v, want int", dn.Type)
	}
	if dn.Expr == prog.NoExprKey {
		t.Error("member access must carry an expression key")
	}
}

func TestEnumDeclaration(t *testing.T) {
	res := mustParse(t, "enum Color { Red, Green = 5, Blue };")

	for _, name := range []string{"Red", "Green", "Blue"} {
		vr := res.Table.Vars.Get(findVar(t, res, name))
		if vr.Flags&symbols.VarFlagConst == 0 {
			t.Errorf("%s must be const", name)
		}
		ty, _ := res.Types.Lookup(vr.Type)
		if ty.Kind != types.KindEnum {
			t.Errorf("%s type kind = %v, want enum", name, ty.Kind)
		}
	}

	// явный инициализатор связан через '='
	eq := mustFindNode(t, res.Graph, token.Assign, "")
	eqn := res.Graph.Get(eq)
	if res.Graph.Text(eqn.Left) != "Green" || res.Graph.Text(eqn.Right) != "5" {
		t.Errorf("enum init = %q %q, want Green 5",
			res.Graph.Text(eqn.Left), res.Graph.Text(eqn.Right))
	}
}

func TestContainerDeclaration(t *testing.T) {
	res := mustParse(t, "vector<int> v;")

	vr := res.Table.Vars.Get(findVar(t, res, "v"))
	info, ok := res.Types.ContainerInfo(vr.Type)
	if !ok {
		t.Fatal("v must have a container type")
	}
	name, _ := res.Graph.Strings.Lookup(info.Name)
	if name != "vector" {
		t.Errorf("container name = %q, want vector", name)
	}
	if info.Elem != res.Types.Builtins().Int {
		t.Errorf("element = %v, want int", info.Elem)
	}
}

func TestContainerNameShadowedByVariable(t *testing.T) {
	// имя контейнера, затенённое переменной, снова обычное имя
	res := mustParse(t, "int string; int y = string + 1;")
	vr := res.Table.Vars.Get(findVar(t, res, "string"))
	if vr.Type != res.Types.Builtins().Int {
		t.Errorf("shadowing variable type = %v, want int", vr.Type)
	}
}

func TestAggregateInitializerSkipped(t *testing.T) {
	res := mustParse(t, "int a[3] = {1, 2, 3};")

	eq := mustFindNode(t, res.Graph, token.Assign, "")
	rb := res.Graph.Get(res.Graph.Get(eq).Right)
	if rb == nil || rb.Tok != token.LBrace {
		t.Fatal("aggregate initializer must hang the brace group under '='")
	}
	if rb.Link == prog.NoNodeID {
		t.Error("brace group must be link-paired")
	}
}

func TestScopeStamping(t *testing.T) {
	res := mustParse(t, "void f() { int x; x = 1; }")

	for id := res.Graph.First(); id != prog.NoNodeID; id = res.Graph.Get(id).Next {
		if res.Graph.Get(id).Scope == prog.NoScopeID {
			t.Fatalf("node %d (%s) has no scope stamp", id, res.Graph.Text(id))
		}
	}
}
