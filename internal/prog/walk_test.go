package prog

import (
	"testing"

	"vigil/internal/source"
	"vigil/internal/token"
)

// buildExpr собирает (a + b) * a и возвращает граф и интересные узлы
func buildExpr(t *testing.T) (g *Graph, mul, plus, a1, b, a2 NodeID) {
	t.Helper()
	g = NewGraph(nil, 0)
	aName := g.Strings.Intern("a")
	a1 = g.NewNode(token.Ident, NodeName, sp(0, 1), aName)
	plus = g.NewNode(token.Plus, NodeOp, sp(2, 3), source.NoStringID)
	b = g.NewNode(token.Ident, NodeName, sp(4, 5), g.Strings.Intern("b"))
	mul = g.NewNode(token.Star, NodeOp, sp(6, 7), source.NoStringID)
	a2 = g.NewNode(token.Ident, NodeName, sp(8, 9), aName)

	g.Get(a1).Var = VarID(1)
	g.Get(a2).Var = VarID(1)
	g.Get(b).Var = VarID(2)

	g.SetBinary(plus, a1, b)
	g.SetBinary(mul, plus, a2)
	return g, mul, plus, a1, b, a2
}

func TestVisitPreorder(t *testing.T) {
	g, mul, plus, a1, b, a2 := buildExpr(t)

	var order []NodeID
	Visit(g, mul, func(id NodeID) bool {
		order = append(order, id)
		return true
	})
	want := []NodeID{mul, plus, a1, b, a2}
	if len(order) != len(want) {
		t.Fatalf("visited %d nodes, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %d, want %d", i, order[i], want[i])
		}
	}
}

func TestVisitPrune(t *testing.T) {
	g, mul, plus, _, _, a2 := buildExpr(t)

	var visited []NodeID
	Visit(g, mul, func(id NodeID) bool {
		visited = append(visited, id)
		return id != plus // не спускаться в левое поддерево
	})
	want := []NodeID{mul, plus, a2}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
}

func TestContains(t *testing.T) {
	g, mul, plus, a1, b, _ := buildExpr(t)

	if !ContainsNode(g, mul, b) || !ContainsNode(g, plus, a1) {
		t.Error("ContainsNode missed present nodes")
	}
	if ContainsNode(g, plus, mul) {
		t.Error("subtree must not contain its ancestor")
	}
	if !ContainsVar(g, plus, VarID(2)) {
		t.Error("ContainsVar missed b")
	}
	if ContainsVar(g, mul, VarID(9)) {
		t.Error("ContainsVar found a ghost")
	}
}

func TestEachStream(t *testing.T) {
	g, _, _, a1, _, a2 := buildExpr(t)

	var count int
	EachStream(g, a1, a2, func(NodeID) bool {
		count++
		return true
	})
	if count != 5 {
		t.Errorf("stream walk visited %d, want 5", count)
	}

	count = 0
	EachStream(g, a1, NoNodeID, func(id NodeID) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("early stop visited %d, want 2", count)
	}
}

func TestIdentical(t *testing.T) {
	g := NewGraph(nil, 0)
	aName := g.Strings.Intern("a")

	// два отдельных вхождения a + 1
	a1 := g.NewNode(token.Ident, NodeName, sp(0, 1), aName)
	p1 := g.NewNode(token.Plus, NodeOp, sp(1, 2), source.NoStringID)
	one1 := g.NewNode(token.IntLit, NodeNumber, sp(2, 3), g.Strings.Intern("1"))
	g.Get(a1).Var = VarID(1)
	g.SetBinary(p1, a1, one1)

	a2 := g.NewNode(token.Ident, NodeName, sp(10, 11), aName)
	p2 := g.NewNode(token.Plus, NodeOp, sp(11, 12), source.NoStringID)
	one2 := g.NewNode(token.IntLit, NodeNumber, sp(12, 13), g.Strings.Intern("1"))
	g.Get(a2).Var = VarID(1)
	g.SetBinary(p2, a2, one2)

	if !Identical(g, p1, p2) {
		t.Error("a+1 must equal a+1")
	}

	// a + 2 отличается литералом
	a3 := g.NewNode(token.Ident, NodeName, sp(20, 21), aName)
	p3 := g.NewNode(token.Plus, NodeOp, sp(21, 22), source.NoStringID)
	two := g.NewNode(token.IntLit, NodeNumber, sp(22, 23), g.Strings.Intern("2"))
	g.Get(a3).Var = VarID(1)
	g.SetBinary(p3, a3, two)

	if Identical(g, p1, p3) {
		t.Error("a+1 must differ from a+2")
	}

	// другая переменная с тем же текстом другого VarID
	g2 := NewGraph(nil, 0)
	x1 := g2.NewNode(token.Ident, NodeName, sp(0, 1), g2.Strings.Intern("x"))
	x2 := g2.NewNode(token.Ident, NodeName, sp(5, 6), g2.Strings.Intern("x"))
	g2.Get(x1).Var = VarID(1)
	g2.Get(x2).Var = VarID(3)
	if Identical(g2, x1, x2) {
		t.Error("same spelling with different VarID must differ")
	}

	// совпадающие ExprKey сравниваются по ключу
	g2.Get(x1).Expr = ExprKey(7)
	g2.Get(x2).Expr = ExprKey(7)
	if !Identical(g2, x1, x2) {
		t.Error("matching ExprKeys must compare equal")
	}
}
