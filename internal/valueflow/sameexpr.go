package valueflow

import (
	"vigil/internal/prog"
	"vigil/internal/token"
	"vigil/internal/types"
	"vigil/internal/value"
)

// passSameExpressions folds operators whose two sides are the same
// expression: x == x is always one, x - x always zero. Operands with side
// effects are left alone, float operands too, NaN is never equal to itself.
func passSameExpressions(cx *Context) {
	g := cx.Graph
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		if n.Kind != prog.NodeOp || !n.IsBinaryOp() {
			continue
		}
		var x int64
		switch n.Tok {
		case token.EqEq, token.LtEq, token.GtEq:
			x = 1
		case token.BangEq, token.Lt, token.Gt, token.Minus, token.Caret:
			x = 0
		default:
			continue
		}
		if !prog.Identical(g, n.Left, n.Right) {
			continue
		}
		if !cx.sideEffectFree(n.Left) || !cx.sideEffectFree(n.Right) {
			continue
		}
		if t, ok := cx.typeOf(n.Left); ok && t.Kind == types.KindFloat {
			continue
		}
		v := value.MakeKnownInt(x)
		v.AddStep(id, "same expression on both sides")
		cx.Publish(id, v)
	}
}

// sideEffectFree reports whether evaluating the subtree twice is observably
// the same as evaluating it once.
func (cx *Context) sideEffectFree(root prog.NodeID) bool {
	ok := true
	prog.Visit(cx.Graph, root, func(id prog.NodeID) bool {
		n := cx.node(id)
		if n.IsCall() || n.IsAssign() || n.IsIncDec() {
			ok = false
		}
		return ok
	})
	return ok
}
