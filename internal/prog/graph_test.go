package prog

import (
	"testing"

	"vigil/internal/source"
	"vigil/internal/token"
)

func sp(start, end uint32) source.Span {
	return source.Span{File: source.FileID(1), Start: start, End: end}
}

func TestStreamLinks(t *testing.T) {
	g := NewGraph(nil, 0)
	a := g.NewNode(token.Ident, NodeName, sp(0, 1), g.Strings.Intern("a"))
	plus := g.NewNode(token.Plus, NodeOp, sp(2, 3), source.NoStringID)
	b := g.NewNode(token.Ident, NodeName, sp(4, 5), g.Strings.Intern("b"))

	if g.First() != a || g.Last() != b {
		t.Fatalf("stream ends wrong: first=%d last=%d", g.First(), g.Last())
	}
	if g.Get(a).Next != plus || g.Get(plus).Next != b || g.Get(b).Next != NoNodeID {
		t.Error("Next chain broken")
	}
	if g.Get(b).Prev != plus || g.Get(plus).Prev != a || g.Get(a).Prev != NoNodeID {
		t.Error("Prev chain broken")
	}
	if g.Len() != 3 {
		t.Errorf("Len = %d", g.Len())
	}
}

func TestInsertAfter(t *testing.T) {
	g := NewGraph(nil, 0)
	a := g.NewNode(token.Ident, NodeName, sp(0, 1), g.Strings.Intern("a"))
	c := g.NewNode(token.Ident, NodeName, sp(2, 3), g.Strings.Intern("c"))

	b := g.InsertAfter(a, token.IntLit, NodeNumber, sp(0, 1), g.Strings.Intern("10"))
	if g.Get(a).Next != b || g.Get(b).Next != c || g.Get(b).Prev != a || g.Get(c).Prev != b {
		t.Error("InsertAfter mislinked the middle node")
	}

	// вставка после хвоста двигает Last
	d := g.InsertAfter(c, token.Semicolon, NodePunct, sp(4, 5), source.NoStringID)
	if g.Last() != d || g.Get(c).Next != d {
		t.Error("InsertAfter at tail failed")
	}
}

func TestAstLinks(t *testing.T) {
	// a = b + 1
	g := NewGraph(nil, 0)
	a := g.NewNode(token.Ident, NodeName, sp(0, 1), g.Strings.Intern("a"))
	assign := g.NewNode(token.Assign, NodeOp, sp(2, 3), source.NoStringID)
	b := g.NewNode(token.Ident, NodeName, sp(4, 5), g.Strings.Intern("b"))
	plus := g.NewNode(token.Plus, NodeOp, sp(6, 7), source.NoStringID)
	one := g.NewNode(token.IntLit, NodeNumber, sp(8, 9), g.Strings.Intern("1"))

	g.SetBinary(plus, b, one)
	g.SetBinary(assign, a, plus)

	if !g.Get(assign).IsBinaryOp() || !g.Get(plus).IsBinaryOp() {
		t.Fatal("binary ops not recognized")
	}
	if g.Get(b).Parent != plus || g.Get(one).Parent != plus || g.Get(plus).Parent != assign {
		t.Error("Parent links wrong")
	}
	if g.Root(one) != assign || g.Root(a) != assign || g.Root(assign) != assign {
		t.Error("Root climb wrong")
	}
	if g.Sibling(b) != one || g.Sibling(one) != b || g.Sibling(assign) != NoNodeID {
		t.Error("Sibling lookup wrong")
	}
}

func TestUnaryAndPredicates(t *testing.T) {
	g := NewGraph(nil, 0)
	bang := g.NewNode(token.Bang, NodeOp, sp(0, 1), source.NoStringID)
	x := g.NewNode(token.Ident, NodeName, sp(1, 2), g.Strings.Intern("x"))
	g.SetUnary(bang, x)

	if !g.Get(bang).IsUnaryOp() || g.Get(bang).IsBinaryOp() {
		t.Error("unary op misclassified")
	}
	if !g.Get(x).IsLeaf() || !g.Get(x).IsName() {
		t.Error("leaf name misclassified")
	}

	n := &Node{Kind: NodeOp, Tok: token.PlusAssign}
	if !n.IsAssign() || !n.IsCompoundAssign() {
		t.Error("+= must be compound assign")
	}
	n = &Node{Kind: NodeOp, Tok: token.Assign}
	if !n.IsAssign() || n.IsCompoundAssign() {
		t.Error("= must be plain assign")
	}
	n = &Node{Kind: NodeOp, Tok: token.LtEq}
	if !n.IsComparison() {
		t.Error("<= is a comparison")
	}
	n = &Node{Kind: NodeOp, Tok: token.PlusPlus}
	if !n.IsIncDec() {
		t.Error("++ is inc/dec")
	}
}

func TestCallAndCastNodes(t *testing.T) {
	g := NewGraph(nil, 0)
	f := g.NewNode(token.Ident, NodeName, sp(0, 1), g.Strings.Intern("f"))
	call := g.NewNode(token.LParen, NodeOp, sp(1, 2), source.NoStringID)
	arg := g.NewNode(token.IntLit, NodeNumber, sp(2, 3), g.Strings.Intern("1"))
	g.SetBinary(call, f, arg)

	if !g.Get(call).IsCall() {
		t.Error("call node not recognized")
	}
	if g.Get(call).IsCast() {
		t.Error("call is not a cast")
	}

	cast := g.NewNode(token.LParen, NodeOp, sp(4, 5), source.NoStringID)
	g.Get(cast).Flags |= FlagCast
	x := g.NewNode(token.Ident, NodeName, sp(6, 7), g.Strings.Intern("x"))
	g.SetUnary(cast, x)
	if !g.Get(cast).IsCast() || g.Get(cast).IsCall() {
		t.Error("cast node misclassified")
	}
}

func TestGraphText(t *testing.T) {
	g := NewGraph(nil, 0)
	x := g.NewNode(token.Ident, NodeName, sp(0, 1), g.Strings.Intern("x"))
	plus := g.NewNode(token.Plus, NodeOp, sp(2, 3), source.NoStringID)

	if g.Text(x) != "x" {
		t.Errorf("Text(x) = %q", g.Text(x))
	}
	if g.Text(plus) != "+" {
		t.Errorf("Text(plus) = %q", g.Text(plus))
	}
	if g.Text(NoNodeID) != "" {
		t.Error("Text of no node must be empty")
	}
}

func TestLinkPairs(t *testing.T) {
	g := NewGraph(nil, 0)
	open := g.NewNode(token.LBrace, NodePunct, sp(0, 1), source.NoStringID)
	inner := g.NewNode(token.Ident, NodeName, sp(1, 2), g.Strings.Intern("y"))
	cls := g.NewNode(token.RBrace, NodePunct, sp(2, 3), source.NoStringID)
	g.SetLink(open, cls)

	if g.Get(open).Link != cls || g.Get(cls).Link != open {
		t.Error("bracket link not symmetric")
	}
	if g.Get(inner).Link != NoNodeID {
		t.Error("non-bracket node must not be linked")
	}
}
