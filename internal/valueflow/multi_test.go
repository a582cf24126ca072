package valueflow

import (
	"testing"

	"vigil/internal/token"
	"vigil/internal/value"
)

func TestMultipleArgumentsTrackedTogether(t *testing.T) {
	cx, _ := analyzeSource(t, "void add(int a, int b) { int s = a + b; } void g() { add(3, 4); }")

	plus := mustStream(t, cx.Graph, token.Plus, "", 1)
	f := findFact(cx, plus, func(v *value.Value) bool {
		return v.IsIntValue() && v.Int == 7
	})
	if f == nil {
		t.Fatalf("a + b: no fact 7, facts: %s", factDump(cx, plus))
	}
	if f.IsKnown() || f.Path == 0 {
		t.Errorf("combined argument fact must be a tagged hypothesis, got %s", f)
	}

	// оба слагаемых несут одну и ту же метку пути
	aUse := mustStream(t, cx.Graph, token.Ident, "a", 2)
	af := findFact(cx, aUse, func(v *value.Value) bool {
		return v.IsIntValue() && v.Int == 3
	})
	if af == nil {
		t.Fatalf("a inside add: no fact 3, facts: %s", factDump(cx, aUse))
	}
	if af.Path != f.Path {
		t.Errorf("operand path = %d, want the sum's %d", af.Path, f.Path)
	}
}

// A condition inside the callee can pin a parameter no argument fact covers.
// The batch walk must start tracking it on the spot, under the same path tag
// as the injected arguments.
func TestBranchHypothesisAdoptsUntrackedParameter(t *testing.T) {
	cx, _ := analyzeSource(t,
		"void callee(int a, int b, int c) { if (c == 7) { int t = a + b + c; } }\n"+
			"void caller() { int x; callee(1, 2, x); }")

	use := mustStream(t, cx.Graph, token.Ident, "c", 3)
	f := findFact(cx, use, func(v *value.Value) bool {
		return v.IsIntValue() && v.Int == 7 && v.Path != 0
	})
	if f == nil {
		t.Fatalf("c in branch: no tagged fact 7, facts: %s", factDump(cx, use))
	}

	aUse := mustStream(t, cx.Graph, token.Ident, "a", 2)
	af := findFact(cx, aUse, func(v *value.Value) bool {
		return v.IsIntValue() && v.Int == 1
	})
	if af == nil {
		t.Fatalf("a inside callee: no fact 1, facts: %s", factDump(cx, aUse))
	}
	if f.Path != af.Path {
		t.Errorf("adopted fact path = %d, want the batch tag %d", f.Path, af.Path)
	}
}
