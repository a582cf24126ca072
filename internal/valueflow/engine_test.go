package valueflow

import (
	"testing"

	"vigil/internal/prog"
	"vigil/internal/token"
	"vigil/internal/value"
)

func TestLiteralFolding(t *testing.T) {
	cx, _ := analyzeSource(t, "int x = 3 + 4;")
	plus := mustStream(t, cx.Graph, token.Plus, "", 1)
	if got := mustKnownInt(t, cx, plus); got != 7 {
		t.Errorf("3 + 4 = %d, want 7", got)
	}
}

func TestAssignedValueReachesUses(t *testing.T) {
	cx, _ := analyzeSource(t, "void f() { int x = 10; int y = 4 * x + 2; }")

	use := mustStream(t, cx.Graph, token.Ident, "x", 2)
	if got := mustKnownInt(t, cx, use); got != 10 {
		t.Errorf("x at use = %d, want 10", got)
	}
	star := mustStream(t, cx.Graph, token.Star, "", 1)
	if got := mustKnownInt(t, cx, star); got != 40 {
		t.Errorf("4 * x = %d, want 40", got)
	}
	plus := mustStream(t, cx.Graph, token.Plus, "", 1)
	if got := mustKnownInt(t, cx, plus); got != 42 {
		t.Errorf("4 * x + 2 = %d, want 42", got)
	}
}

// Перечислитель с инициализатором из предыдущего имени разрешается только на
// втором цикле: сперва константный проход разносит B по использованиям, затем
// enum-проход складывает C и продолжает счёт для D.
func TestEnumeratorValues(t *testing.T) {
	cx, res := analyzeSource(t, "enum E { A = 2, B, C = B + 3, D };")

	want := map[string]int64{"A": 2, "B": 3, "C": 6, "D": 7}
	for name, x := range want {
		decl := res.Table.Vars.Get(mustVar(t, res, name)).Decl
		if got := mustKnownInt(t, cx, decl); got != x {
			t.Errorf("%s = %d, want %d", name, got, x)
		}
	}
}

func TestSizeofFolds(t *testing.T) {
	cx, _ := analyzeSource(t, "unsigned long n = sizeof(int);")
	sz := mustStream(t, cx.Graph, token.KwSizeof, "", 1)
	if got := mustKnownInt(t, cx, sz); got != 4 {
		t.Errorf("sizeof(int) = %d, want 4 on unix64", got)
	}
}

func TestStringLiteralFacts(t *testing.T) {
	cx, _ := analyzeSource(t, `const char *s = "hi";`)
	lit := mustStream(t, cx.Graph, token.StringLit, "", 1)

	if f := findFact(cx, lit, func(v *value.Value) bool {
		return v.IsBufferSizeValue() && v.IsKnown() && v.Int == 3
	}); f == nil {
		t.Errorf("string literal: no buffer-size 3, facts: %s", factDump(cx, lit))
	}
	if f := findFact(cx, lit, func(v *value.Value) bool {
		return v.IsTokenRefValue() && v.Ref == lit
	}); f == nil {
		t.Errorf("string literal: no self token-ref, facts: %s", factDump(cx, lit))
	}
}

func TestStringIndexing(t *testing.T) {
	cx, _ := analyzeSource(t, `void f() { const char *s = "abc"; char c = s[1]; }`)
	idx := mustStream(t, cx.Graph, token.LBracket, "", 1)
	if got := mustKnownInt(t, cx, idx); got != 'b' {
		t.Errorf("\"abc\"[1] = %d, want %d", got, 'b')
	}
}

func TestAllocationBufferSize(t *testing.T) {
	cx, _ := analyzeSource(t, "void f() { char *p = malloc(16); }")
	call := mustCall(t, cx.Graph, "malloc")
	if f := findFact(cx, call, func(v *value.Value) bool {
		return v.IsBufferSizeValue() && v.Int == 16
	}); f == nil {
		t.Errorf("malloc(16): no buffer-size 16, facts: %s", factDump(cx, call))
	}
}

func TestCallocBufferSize(t *testing.T) {
	cx, _ := analyzeSource(t, "void f() { char *p = calloc(4, 8); }")
	call := mustCall(t, cx.Graph, "calloc")
	if f := findFact(cx, call, func(v *value.Value) bool {
		return v.IsBufferSizeValue() && v.Int == 32
	}); f == nil {
		t.Errorf("calloc(4, 8): no buffer-size 32, facts: %s", factDump(cx, call))
	}
}

func TestConstantReturnReachesCallSite(t *testing.T) {
	cx, _ := analyzeSource(t, "int f() { return 42; } void g() { int y = f(); }")
	call := mustCall(t, cx.Graph, "f")
	if got := mustKnownInt(t, cx, call); got != 42 {
		t.Errorf("f() = %d, want 42", got)
	}
}

// Значение аргумента попадает в тело функции как гипотеза со своим тегом
// пути: факт не безусловен, но участвует в арифметике тела.
func TestArgumentValueEntersCallee(t *testing.T) {
	cx, _ := analyzeSource(t, "void h(int n) { int z = n + 1; } void g() { h(5); }")

	use := mustStream(t, cx.Graph, token.Ident, "n", 2)
	f := findFact(cx, use, func(v *value.Value) bool {
		return v.IsIntValue() && v.Int == 5
	})
	if f == nil {
		t.Fatalf("n inside h: no fact 5, facts: %s", factDump(cx, use))
	}
	if f.IsKnown() || f.Path == 0 {
		t.Errorf("argument fact must be a tagged hypothesis, got %s", f)
	}

	plus := mustStream(t, cx.Graph, token.Plus, "", 1)
	sum := findFact(cx, plus, func(v *value.Value) bool {
		return v.IsIntValue() && v.Int == 6
	})
	if sum == nil {
		t.Fatalf("n + 1: no fact 6, facts: %s", factDump(cx, plus))
	}
	if sum.Path != f.Path {
		t.Errorf("sum path = %d, want the argument's %d", sum.Path, f.Path)
	}
}

func TestUninitializedLocalTracked(t *testing.T) {
	cx, _ := analyzeSource(t, "void f() { int x; int y = x; }")
	use := mustStream(t, cx.Graph, token.Ident, "x", 2)
	if f := findFact(cx, use, func(v *value.Value) bool { return v.IsUninitValue() }); f == nil {
		t.Errorf("x read before init: no uninit fact, facts: %s", factDump(cx, use))
	}
}

func TestInitializerSuppressesUninit(t *testing.T) {
	cx, _ := analyzeSource(t, "void f() { int x = 0; int y = x; }")
	use := mustStream(t, cx.Graph, token.Ident, "x", 2)
	if f := findFact(cx, use, func(v *value.Value) bool { return v.IsUninitValue() }); f != nil {
		t.Errorf("initialized x must carry no uninit fact, got %s", f)
	}
}

func TestMovedFromTracked(t *testing.T) {
	cx, _ := analyzeSource(t, "void f(int v) { move(v); int y = v; }")
	use := mustStream(t, cx.Graph, token.Ident, "v", 3)
	f := findFact(cx, use, func(v *value.Value) bool {
		return v.IsMovedValue() && v.MoveKind == value.Moved
	})
	if f == nil {
		t.Errorf("v after move: no moved fact, facts: %s", factDump(cx, use))
	}
}

func TestAssignmentClearsMoved(t *testing.T) {
	cx, _ := analyzeSource(t, "void f(int v) { move(v); v = 1; int y = v; }")
	use := mustStream(t, cx.Graph, token.Ident, "v", 4)
	if f := findFact(cx, use, func(v *value.Value) bool { return v.IsMovedValue() }); f != nil {
		t.Errorf("reassigned v must carry no moved fact, got %s", f)
	}
}

func TestBitMaskBounds(t *testing.T) {
	cx, _ := analyzeSource(t, "void f(int x, int y) { y = x & 7; }")
	amp := mustStream(t, cx.Graph, token.Amp, "", 1)

	lo := findFact(cx, amp, func(v *value.Value) bool {
		return v.IsIntValue() && v.Bound == value.BoundLower && v.Int == 0
	})
	hi := findFact(cx, amp, func(v *value.Value) bool {
		return v.IsIntValue() && v.Bound == value.BoundUpper && v.Int == 7
	})
	if lo == nil || hi == nil {
		t.Errorf("x & 7: want bounds [0, 7], facts: %s", factDump(cx, amp))
	}
	if _, ok := cx.Corpus.KnownInt(amp); ok {
		t.Error("x & 7 with unknown x must not produce an exact value")
	}
}

func TestLocalContainerSizeTracked(t *testing.T) {
	cx, _ := analyzeSource(t, "void f() { vector<int> v; v.push_back(1); unsigned long n = v.size(); }")
	call := mustCall(t, cx.Graph, "size")
	if got := mustKnownInt(t, cx, call); got != 1 {
		t.Errorf("size after one push_back = %d, want 1", got)
	}
}

func TestContainerSizeThroughEmptyBranch(t *testing.T) {
	cx, _ := analyzeSource(t,
		"void f(vector<int> v) { if (v.empty()) { unsigned long n = v.size(); } }")
	call := mustCall(t, cx.Graph, "size")
	if got := mustKnownInt(t, cx, call); got != 0 {
		t.Errorf("size inside empty() branch = %d, want 0", got)
	}
}

func TestCastTruncates(t *testing.T) {
	cx, _ := analyzeSource(t, "void f() { char c = (char)300; }")
	var cast prog.NodeID
	for id := cx.Graph.First(); id != prog.NoNodeID; id = cx.Graph.Get(id).Next {
		if cx.Graph.Get(id).IsCast() {
			cast = id
			break
		}
	}
	if cast == prog.NoNodeID {
		t.Fatal("cast node not found")
	}
	if got := mustKnownInt(t, cx, cast); got != 44 {
		t.Errorf("(char)300 = %d, want 44", got)
	}
}

func TestValueSurvivesReadOnlyBranch(t *testing.T) {
	cx, _ := analyzeSource(t, "void f(int c) { int x = 5; if (c) { int z = x; } int y = x; }")

	inBranch := mustStream(t, cx.Graph, token.Ident, "x", 2)
	if got := mustKnownInt(t, cx, inBranch); got != 5 {
		t.Errorf("x inside branch = %d, want 5", got)
	}
	after := mustStream(t, cx.Graph, token.Ident, "x", 3)
	if got := mustKnownInt(t, cx, after); got != 5 {
		t.Errorf("x after branch = %d, want 5", got)
	}
}

// Повторный прогон не должен ни добавить фактов, ни удвоить существующие:
// корпус отвергает дубликаты, конвейер сходится.
func TestAnalyzeIdempotent(t *testing.T) {
	cx, _ := analyzeSource(t,
		"enum E { A = 1, B }; void f(int x) { int y = 4 * x + 2; if (x == 10) { y = x; } }")

	before := cx.Corpus.Count()
	Analyze(cx)
	if after := cx.Corpus.Count(); after != before {
		t.Errorf("second run grew the corpus: %d -> %d", before, after)
	}
}

func TestFactsPerNodeCapped(t *testing.T) {
	// десять условий на одну переменную: больше MaxFactsPerNode претендентов
	cx, _ := analyzeSource(t, `
void f(int x, int y) {
	if (x != 1) { if (x != 2) { if (x != 3) { if (x != 4) { if (x != 5) {
	if (x != 6) { if (x != 7) { if (x != 8) { if (x != 9) { if (x != 10) {
	if (x != 11) { if (x != 12) {
		y = x;
	} } } } } } } } } } } }
}`)
	use := findStream(cx.Graph, token.Ident, "x", 14)
	if use == prog.NoNodeID {
		t.Fatal("innermost x not found")
	}
	if n := len(cx.Corpus.Facts(use)); n > value.MaxFactsPerNode {
		t.Errorf("fact list exceeds cap: %d > %d", n, value.MaxFactsPerNode)
	}
}
