package prog

import "vigil/internal/token"

// Callee returns the node naming the called function: the plain name for
// f(x), the member name for v.push_back(x). NoNodeID when the call shape is
// not recognized.
func Callee(g *Graph, call NodeID) NodeID {
	n := g.Get(call)
	if n == nil || !n.IsCall() {
		return NoNodeID
	}
	left := g.Get(n.Left)
	if left == nil {
		return NoNodeID
	}
	if left.Kind == NodeName {
		return n.Left
	}
	if left.Kind == NodeOp && (left.Tok == token.Dot || left.Tok == token.Arrow) {
		return left.Right
	}
	return NoNodeID
}

// Receiver returns the object expression of a member call, NoNodeID for free
// calls.
func Receiver(g *Graph, call NodeID) NodeID {
	n := g.Get(call)
	if n == nil || !n.IsCall() {
		return NoNodeID
	}
	left := g.Get(n.Left)
	if left == nil || left.Kind != NodeOp {
		return NoNodeID
	}
	if left.Tok == token.Dot || left.Tok == token.Arrow {
		return left.Left
	}
	return NoNodeID
}

// CalleeName returns the spelling of the called function, "" when unknown.
func CalleeName(g *Graph, call NodeID) string {
	c := Callee(g, call)
	if c == NoNodeID {
		return ""
	}
	return g.Text(c)
}

// CallArgs flattens the comma chain under a call's right operand into
// argument roots in source order.
func CallArgs(g *Graph, call NodeID) []NodeID {
	n := g.Get(call)
	if n == nil || !n.IsCall() || n.Right == NoNodeID {
		return nil
	}
	// аргументы висят левоассоциативной цепочкой запятых
	var args []NodeID
	var flatten func(id NodeID)
	flatten = func(id NodeID) {
		if id == NoNodeID {
			return
		}
		a := g.Get(id)
		if a.Kind == NodeOp && a.Tok == token.Comma && a.IsBinaryOp() {
			flatten(a.Left)
			flatten(a.Right)
			return
		}
		args = append(args, id)
	}
	flatten(n.Right)
	return args
}

// ArgIndex returns the zero-based argument position of the subtree containing
// id under the given call, or -1 when id is not inside an argument.
func ArgIndex(g *Graph, call, id NodeID) int {
	for i, a := range CallArgs(g, call) {
		if a == id || ContainsNode(g, a, id) {
			return i
		}
	}
	return -1
}
