package valueflow

import (
	"testing"

	"vigil/internal/token"
	"vigil/internal/value"
)

func TestSameExpressionFolds(t *testing.T) {
	cx, _ := analyzeSource(t, "void f(int x) { int a = x ^ x; int b = x <= x; }")

	caret := mustStream(t, cx.Graph, token.Caret, "", 1)
	if got := mustKnownInt(t, cx, caret); got != 0 {
		t.Errorf("x ^ x = %d, want 0", got)
	}
	lteq := mustStream(t, cx.Graph, token.LtEq, "", 1)
	if got := mustKnownInt(t, cx, lteq); got != 1 {
		t.Errorf("x <= x = %d, want 1", got)
	}
}

func TestSameExpressionSkipsSideEffects(t *testing.T) {
	cx, _ := analyzeSource(t, "int g(); void f() { int c = g() == g(); }")

	eq := mustStream(t, cx.Graph, token.EqEq, "", 1)
	if f := findFact(cx, eq, func(v *value.Value) bool { return v.IsIntValue() && v.Int == 1 }); f != nil {
		t.Errorf("call operands must not fold, got %s", f)
	}
}

func TestSameExpressionSkipsFloats(t *testing.T) {
	// NaN != NaN, сравнение с самим собой ничего не гарантирует
	cx, _ := analyzeSource(t, "void f(float x) { int b = x == x; }")

	eq := mustStream(t, cx.Graph, token.EqEq, "", 1)
	if f := findFact(cx, eq, func(v *value.Value) bool { return v.IsIntValue() && v.Int == 1 }); f != nil {
		t.Errorf("float compare must not fold, got %s", f)
	}
}
