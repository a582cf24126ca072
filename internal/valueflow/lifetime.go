package valueflow

import (
	"vigil/internal/library"
	"vigil/internal/prog"
	"vigil/internal/symbols"
	"vigil/internal/token"
	"vigil/internal/types"
	"vigil/internal/value"
)

// Lifetime analysis answers one question for pointer, reference and
// iterator values: whose storage does this value depend on. The answer is a
// points-into fact naming the owning token, how the value relates to it and
// where the owner's storage lives. The fact then rides the normal forward
// walk, but terminates at the OWNER's scope boundary rather than the
// pointer's: a pointer outliving its referent is exactly the situation the
// fact exists to expose.

// storageLifetimeScope maps a referent's storage class to the scope tag of
// the fact. Static and global storage never dies, nothing to track.
func storageLifetimeScope(vr *symbols.Variable) (value.LifetimeScope, bool) {
	if vr == nil {
		return 0, false
	}
	switch vr.Storage {
	case symbols.StorageLocal:
		return value.LifetimeScopeLocal, true
	case symbols.StorageArgument:
		return value.LifetimeScopeArgument, true
	case symbols.StorageMember:
		return value.LifetimeScopeThisValue, true
	default:
		return 0, false
	}
}

// lifetimeOrigins resolves which storage the value of expr points into,
// following casts, pointer arithmetic, container accessors and calls into
// defined functions. Every hop is depth-bounded; running out of budget
// resolves to nothing rather than to a wrong owner.
func (cx *Context) lifetimeOrigins(expr prog.NodeID, depth int) []value.Value {
	n := cx.node(expr)
	if n == nil {
		return nil
	}
	if depth <= 0 {
		cx.Bailout(expr, "lifetime resolution exceeds depth budget")
		return nil
	}
	switch {
	case n.Kind == prog.NodeOp && n.Tok == token.Amp && n.IsUnaryOp():
		return cx.addressOrigins(expr, n, depth)
	case n.IsName() && n.Var != prog.NoVarID:
		return cx.storedLifetimes(expr)
	case n.IsCast():
		return cx.lifetimeOrigins(n.Left, depth-1)
	case n.IsTernaryHead():
		colon := cx.node(n.Right)
		if colon == nil || colon.Tok != token.Colon {
			return nil
		}
		out := cx.lifetimeOrigins(colon.Left, depth-1)
		return append(out, cx.lifetimeOrigins(colon.Right, depth-1)...)
	case n.IsBinaryOp() && (n.Tok == token.Plus || n.Tok == token.Minus):
		if t, ok := cx.typeOf(n.Left); ok && t.IsPointerLike() {
			return cx.lifetimeOrigins(n.Left, depth-1)
		}
		if n.Tok == token.Plus {
			if t, ok := cx.typeOf(n.Right); ok && t.IsPointerLike() {
				return cx.lifetimeOrigins(n.Right, depth-1)
			}
		}
		return nil
	case n.IsBinaryOp() && n.Tok == token.LBracket:
		return cx.elementOrigins(n, depth)
	case n.IsCall():
		if y, recv, ok := cx.callYield(expr); ok {
			return cx.yieldOrigins(expr, y, recv)
		}
		return cx.returnOrigins(expr, depth)
	}
	return nil
}

// addressOrigins handles &x and &compound: taking an address roots the
// value in whatever storage the operand lives in.
func (cx *Context) addressOrigins(expr prog.NodeID, n *prog.Node, depth int) []value.Value {
	inner := cx.node(n.Left)
	if inner != nil && inner.IsName() && inner.Var != prog.NoVarID {
		_, vr := cx.variableOf(n.Left)
		ls, ok := storageLifetimeScope(vr)
		if !ok {
			return nil
		}
		v := value.MakeLifetime(n.Left, value.LifetimeAddress, ls)
		v.Kind = value.Known
		v.AddStep(expr, "address taken")
		return []value.Value{v}
	}
	out := cx.lifetimeOrigins(n.Left, depth-1)
	for i := range out {
		out[i].LifetimeKind = value.LifetimeAddress
		out[i].AddStep(expr, "address taken")
	}
	return out
}

// elementOrigins handles a[i]: an array element lives in the array's own
// storage, a pointer element lives wherever the pointer points.
func (cx *Context) elementOrigins(n *prog.Node, depth int) []value.Value {
	base := cx.node(n.Left)
	if t, ok := cx.typeOf(n.Left); ok && t.Kind == types.KindArray &&
		base != nil && base.IsName() && base.Var != prog.NoVarID {
		_, vr := cx.variableOf(n.Left)
		ls, sok := storageLifetimeScope(vr)
		if !sok {
			return nil
		}
		v := value.MakeLifetime(n.Left, value.LifetimeSubObject, ls)
		v.Kind = value.Known
		return []value.Value{v}
	}
	return cx.lifetimeOrigins(n.Left, depth-1)
}

// yieldOrigins maps a container method call to a points-into fact on the
// receiver: buffers and elements live in the container's storage, iterators
// additionally die on invalidation.
func (cx *Context) yieldOrigins(call prog.NodeID, y library.Yield, recv prog.NodeID) []value.Value {
	var k value.LifetimeKind
	switch y {
	case library.YieldBuffer:
		k = value.LifetimeObject
	case library.YieldStartIterator, library.YieldEndIterator:
		k = value.LifetimeIterator
	case library.YieldItem, library.YieldAtIndex:
		k = value.LifetimeSubObject
	default:
		return nil
	}
	rn := cx.node(recv)
	if rn == nil || !rn.IsName() || rn.Var == prog.NoVarID {
		return nil
	}
	_, vr := cx.variableOf(recv)
	ls, ok := storageLifetimeScope(vr)
	if !ok {
		return nil
	}
	v := value.MakeLifetime(recv, k, ls)
	v.Kind = value.Known
	v.AddStep(call, "points into '"+cx.Graph.Text(recv)+"'")
	return []value.Value{v}
}

// storedLifetimes copies the points-into facts already present on a pointer
// occurrence. Trails are cloned so the copies grow their own steps.
func (cx *Context) storedLifetimes(id prog.NodeID) []value.Value {
	var out []value.Value
	for _, f := range cx.Corpus.Facts(id) {
		if !f.IsLifetimeValue() {
			continue
		}
		f.Explanation = append([]value.Step(nil), f.Explanation...)
		out = append(out, f)
	}
	return out
}

// returnOrigins follows a call into the callee's return statements. A
// return rooted in a parameter aliases the matching call-site argument; a
// return rooted in the callee's own storage comes back marked sub-function,
// the storage is already gone by the time the caller sees the value.
func (cx *Context) returnOrigins(call prog.NodeID, depth int) []value.Value {
	cal := prog.Callee(cx.Graph, call)
	if cal == prog.NoNodeID {
		return nil
	}
	fid := cx.node(cal).Func
	if fid == prog.NoFuncID {
		return nil
	}
	f := cx.Table.Funcs.Get(fid)
	if f == nil || f.Flags&symbols.FuncFlagDefined == 0 {
		return nil
	}
	body := cx.Table.Scopes.Get(f.Body)
	if body == nil || body.BodyStart == prog.NoNodeID || body.BodyEnd == prog.NoNodeID {
		return nil
	}
	args := prog.CallArgs(cx.Graph, call)
	var out []value.Value
	prog.EachStream(cx.Graph, body.BodyStart, body.BodyEnd, func(id prog.NodeID) bool {
		rn := cx.node(id)
		if rn.Tok != token.KwReturn || rn.Left == prog.NoNodeID {
			return true
		}
		if i, ok := cx.paramBase(rn.Left, f); ok {
			if i < len(args) {
				for _, ao := range cx.lifetimeOrigins(args[i], depth-1) {
					ao.AddStep(id, "returned reference")
					out = append(out, ao)
				}
			}
			return true
		}
		for _, o := range cx.lifetimeOrigins(rn.Left, depth-1) {
			o.LifetimeScope = value.LifetimeScopeSubFunction
			o.AddStep(id, "returned reference to callee storage")
			out = append(out, o)
		}
		return true
	})
	return out
}

// paramBase peels casts and constant offsets and reports which parameter of
// f the expression is rooted in, if any.
func (cx *Context) paramBase(expr prog.NodeID, f *symbols.Function) (int, bool) {
	n := cx.node(expr)
	if n == nil {
		return 0, false
	}
	switch {
	case n.IsName() && n.Var != prog.NoVarID:
		if i := paramIndex(f, n.Var); i >= 0 {
			return i, true
		}
	case n.IsCast():
		return cx.paramBase(n.Left, f)
	case n.IsBinaryOp() && (n.Tok == token.Plus || n.Tok == token.Minus):
		if i, ok := cx.paramBase(n.Left, f); ok {
			return i, ok
		}
		if n.Tok == token.Plus {
			return cx.paramBase(n.Right, f)
		}
	}
	return 0, false
}

func paramIndex(f *symbols.Function, v prog.VarID) int {
	for i, p := range f.Params {
		if p == v {
			return i
		}
	}
	return -1
}

// passLifetimes publishes points-into facts for pointer and iterator
// assignments and for returned addresses.
func passLifetimes(cx *Context) {
	g := cx.Graph
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		switch {
		case n.Kind == prog.NodeOp && n.Tok == token.Assign && n.IsBinaryOp():
			cx.lifetimeAssign(id, n)
		case n.Tok == token.KwReturn && n.Left != prog.NoNodeID:
			for _, o := range cx.lifetimeOrigins(n.Left, cx.Budgets.LifetimeDepth) {
				cx.Publish(n.Left, o)
			}
		}
	}
}

func (cx *Context) lifetimeAssign(id prog.NodeID, n *prog.Node) {
	t, ok := cx.typeOf(n.Left)
	if !ok || !t.IsPointerLike() || !cx.trackableEntity(n.Left) {
		return
	}
	origins := cx.lifetimeOrigins(n.Right, cx.Budgets.LifetimeDepth)
	if len(origins) == 0 {
		return
	}
	semi := cx.statementEnd(id)
	for _, o := range origins {
		cx.Publish(n.Right, o)
		if semi == prog.NoNodeID {
			continue
		}
		start := cx.node(semi).Next
		if start == prog.NoNodeID {
			continue
		}
		f := o
		f.Explanation = append([]value.Step(nil), o.Explanation...)
		f.AddStep(id, "assigned to '"+cx.Graph.Text(n.Left)+"'")
		ea := newEntityAnalyzer(cx, n.Left, f)
		cx.walkForward(ea, start, cx.lifetimeEnd(id, &o))
	}
}

// lifetimeEnd picks where a points-into fact stops: the owner's scope end
// for local referents, the enclosing function otherwise.
func (cx *Context) lifetimeEnd(at prog.NodeID, o *value.Value) prog.NodeID {
	if o.LifetimeScope == value.LifetimeScopeLocal {
		if vid, vr := cx.variableOf(o.Ref); vr != nil {
			if end := cx.Table.ScopeEndOf(vid); end != prog.NoNodeID {
				return end
			}
		}
	}
	return cx.enclosingFunctionEnd(at)
}
