package prog

// Visit walks the expression tree from root in preorder. Return false from fn
// to prune the children of the current node. Traversal is iterative; tree
// depth does not limit it.
func Visit(g *Graph, root NodeID, fn func(NodeID) bool) {
	if root == NoNodeID {
		return
	}
	stack := make([]NodeID, 0, 16)
	stack = append(stack, root)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == NoNodeID {
			continue
		}
		if !fn(id) {
			continue
		}
		n := g.Get(id)
		// правый раньше в стек, чтобы левый обходился первым
		if n.Right != NoNodeID {
			stack = append(stack, n.Right)
		}
		if n.Left != NoNodeID {
			stack = append(stack, n.Left)
		}
	}
}

// ContainsNode reports whether needle occurs in the subtree under root.
func ContainsNode(g *Graph, root, needle NodeID) bool {
	found := false
	Visit(g, root, func(id NodeID) bool {
		if id == needle {
			found = true
		}
		return !found
	})
	return found
}

// ContainsVar reports whether any node under root reads the given variable.
func ContainsVar(g *Graph, root NodeID, v VarID) bool {
	found := false
	Visit(g, root, func(id NodeID) bool {
		if g.Get(id).Var == v {
			found = true
		}
		return !found
	})
	return found
}

// EachStream invokes fn for every stream node in [from, to]; to may be
// NoNodeID to run to the end. fn returning false stops the walk.
func EachStream(g *Graph, from, to NodeID, fn func(NodeID) bool) {
	for id := from; id != NoNodeID; id = g.Get(id).Next {
		if !fn(id) {
			return
		}
		if id == to {
			return
		}
	}
}

// Identical reports whether two subtrees spell the same expression: same
// operators, same names, same literals, position-independent. Nodes with
// assigned ExprKeys compare by key.
func Identical(g *Graph, a, b NodeID) bool {
	if a == b {
		return true
	}
	if a == NoNodeID || b == NoNodeID {
		return false
	}
	na, nb := g.Get(a), g.Get(b)
	if na.Expr != NoExprKey && nb.Expr != NoExprKey {
		return na.Expr == nb.Expr
	}
	if na.Tok != nb.Tok || na.Kind != nb.Kind {
		return false
	}
	if na.Flags&FlagPostfix != nb.Flags&FlagPostfix {
		return false
	}
	// (int)x и (char)x структурно совпадают, различие только в типе
	if na.Flags.Has(FlagCast) || nb.Flags.Has(FlagCast) {
		if na.Flags&FlagCast != nb.Flags&FlagCast || na.Type != nb.Type {
			return false
		}
	}
	if na.Kind == NodeName && na.Var != nb.Var {
		return false
	}
	if na.IsLiteral() || na.Kind == NodeName {
		if na.Text != nb.Text {
			return false
		}
	}
	return Identical(g, na.Left, nb.Left) && Identical(g, na.Right, nb.Right)
}
