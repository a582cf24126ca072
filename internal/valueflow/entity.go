package valueflow

import (
	"vigil/internal/library"
	"vigil/internal/prog"
	"vigil/internal/symbols"
	"vigil/internal/token"
	"vigil/internal/value"
)

// assumption pins the outcome of one condition node for the rest of a walk.
type assumption struct {
	cond  prog.NodeID
	truth bool
}

// entityAnalyzer carries one fact for one entity along the token stream. The
// entity is either a plain variable, matched by VarID, or a pure compound
// expression, matched by structural key.
type entityAnalyzer struct {
	cx     *Context
	entity prog.NodeID
	key    prog.ExprKey
	v      prog.VarID

	local     bool
	addrTaken bool
	shared    bool // global, static or member: any opaque call may write it

	val     value.Value
	invalid bool
	assumed []assumption
}

func newEntityAnalyzer(cx *Context, entity prog.NodeID, val value.Value) *entityAnalyzer {
	a := &entityAnalyzer{cx: cx, entity: entity, val: val}
	n := cx.node(entity)
	a.key = n.Expr
	if n.Var != prog.NoVarID && n.IsName() {
		a.v = n.Var
		if vr := cx.Table.Vars.Get(n.Var); vr != nil {
			a.local = vr.IsLocal()
			a.addrTaken = vr.Flags&symbols.VarFlagAddressTaken != 0
			switch vr.Storage {
			case symbols.StorageGlobal, symbols.StorageStatic, symbols.StorageMember:
				a.shared = true
			}
		}
	}
	return a
}

func (a *entityAnalyzer) Invalid() bool { return a.invalid }

func (a *entityAnalyzer) matches(id prog.NodeID) bool {
	n := a.cx.node(id)
	if a.v != prog.NoVarID {
		return n.Var == a.v && n.IsName()
	}
	return a.key != prog.NoExprKey && n.Expr == a.key && prog.Identical(a.cx.Graph, a.entity, id)
}

// dependsOn reports whether a write to the variable invalidates the carried
// fact: the variable occurs inside a tracked compound expression, or it is
// the anchor of a symbolic fact.
func (a *entityAnalyzer) dependsOn(v prog.VarID) bool {
	if a.v == prog.NoVarID && a.key != prog.NoExprKey && prog.ContainsVar(a.cx.Graph, a.entity, v) {
		return true
	}
	if a.val.IsSymbolicValue() && a.val.Ref != prog.NoNodeID && a.cx.node(a.val.Ref).Var == v {
		return true
	}
	return false
}

func (a *entityAnalyzer) Classify(id prog.NodeID, dir Direction) Action {
	n := a.cx.node(id)
	if n.Kind == prog.NodeOp && n.Tok == token.Amp && n.IsUnaryOp() && a.matches(n.Left) {
		return ActInvalidate
	}
	if a.matches(id) {
		return a.classifyMatch(id, n)
	}
	if n.Var != prog.NoVarID && a.dependsOn(n.Var) && a.cx.isWriteTarget(id) {
		return ActInvalidate
	}
	if n.IsCall() {
		return a.classifyCall(id)
	}
	return ActNone
}

// classifyMatch decides what the occurrence itself does: plain read, write
// target, computable increment, or a container method on the receiver.
func (a *entityAnalyzer) classifyMatch(id prog.NodeID, n *prog.Node) Action {
	p := a.cx.node(n.Parent)
	if p == nil {
		return ActRead
	}
	switch {
	case p.IsAssign() && p.Left == id:
		if p.Tok == token.Assign {
			if rhs, ok := a.Evaluate(p.Right); ok && a.val.IsIntValue() && a.val.Bound == value.BoundPoint && !a.val.IsImpossible() && rhs == a.val.Int {
				return ActWrite | ActIdempotent
			}
			return ActWrite
		}
		// составное присваивание читает старое значение
		if _, ok := a.incrementTo(id); ok {
			return ActRead | ActWrite | ActIncremental
		}
		return ActRead | ActWrite
	case p.IsIncDec():
		if a.val.IsIntValue() || a.val.IsIteratorValue() {
			return ActRead | ActWrite | ActIncremental
		}
		return ActRead | ActWrite
	case p.Tok == token.Dot && p.Left == id:
		return a.classifyReceiver(p)
	default:
		return ActRead
	}
}

// classifyReceiver maps a container method call on the tracked entity to an
// action, honoring the library model. An unknown method on a known container
// is an arbitrary write.
func (a *entityAnalyzer) classifyReceiver(dot *prog.Node) Action {
	call := a.cx.node(dot.Parent)
	if call == nil || !call.IsCall() {
		return ActRead
	}
	cont, ok := a.cx.containerOf(dot.Left)
	if !ok {
		return ActRead
	}
	method := a.cx.Graph.Text(dot.Right)
	if !cont.KnowsMethod(method) {
		return ActInvalidate
	}
	act := cont.ActionOf(method)
	if a.val.IsContainerSizeValue() {
		switch act {
		case library.ActionNone, library.ActionFind, library.ActionChangeContent:
			// содержимое меняется, размер нет
			return ActRead
		case library.ActionPush, library.ActionPop:
			return ActRead | ActWrite | ActIncremental
		default:
			return ActWrite
		}
	}
	if act == library.ActionNone || act == library.ActionFind {
		return ActRead
	}
	return ActWrite
}

// classifyCall decides whether an opaque call can write the entity behind
// the analyzer's back. Pure library functions touch nothing; anything else
// invalidates shared or address-taken variables.
func (a *entityAnalyzer) classifyCall(id prog.NodeID) Action {
	if prog.ContainsNode(a.cx.Graph, id, a.entity) {
		// вхождения внутри вызова классифицируются на своих узлах
		return ActNone
	}
	if name := prog.CalleeName(a.cx.Graph, id); name != "" {
		if fn, ok := a.cx.Library.Function(name); ok && fn.Pure {
			return ActNone
		}
	}
	if a.shared || a.addrTaken {
		return ActInvalidate
	}
	return ActNone
}

// incrementTo computes the value after an increment-style write at the
// occurrence: ++/-- or a compound assignment with an evaluable right side.
func (a *entityAnalyzer) incrementTo(id prog.NodeID) (int64, bool) {
	n := a.cx.node(id)
	p := a.cx.node(n.Parent)
	if p == nil {
		return 0, false
	}
	switch {
	case p.IsIncDec():
		if p.Tok == token.PlusPlus {
			return a.val.Int + 1, true
		}
		return a.val.Int - 1, true
	case p.IsCompoundAssign() && p.Left == id:
		if !a.val.IsIntValue() {
			return 0, false
		}
		rhs, ok := a.Evaluate(p.Right)
		if !ok {
			return 0, false
		}
		return calcInt(p.Tok.CompoundBase(), a.val.Int, rhs)
	default:
		return 0, false
	}
}

// containerDelta returns the size delta of a push or pop at the receiver
// occurrence.
func (a *entityAnalyzer) containerDelta(id prog.NodeID) (int64, bool) {
	dot := a.cx.node(a.cx.node(id).Parent)
	if dot == nil || dot.Tok != token.Dot {
		return 0, false
	}
	cont, ok := a.cx.containerOf(id)
	if !ok {
		return 0, false
	}
	switch cont.ActionOf(a.cx.Graph.Text(dot.Right)) {
	case library.ActionPush:
		return a.val.Int + 1, true
	case library.ActionPop:
		return a.val.Int - 1, true
	default:
		return 0, false
	}
}

func (a *entityAnalyzer) Update(id prog.NodeID, act Action, dir Direction) {
	if act.Has(ActInvalidate) {
		a.invalid = true
		return
	}
	if dir == Reverse {
		a.updateReverse(id, act)
		return
	}
	if act.Has(ActRead) || act.Has(ActIdempotent) {
		a.publishAt(id)
	}
	if !act.Has(ActWrite) || act.Has(ActIdempotent) {
		return
	}
	if !act.Has(ActIncremental) {
		a.invalid = true
		return
	}
	next, ok := a.incrementTo(id)
	if !ok {
		next, ok = a.containerDelta(id)
	}
	if !ok {
		a.invalid = true
		return
	}
	if a.val.IsContainerSizeValue() && !a.val.IsImpossible() && next < 0 {
		a.invalid = true
		return
	}
	if a.val.IsIntValue() {
		n := a.cx.node(id)
		if !a.cx.fitsType(next, n.Type) {
			a.invalid = true
			return
		}
	}
	step := "incremented"
	if next < a.val.Int {
		step = "decremented"
	}
	a.val.Int = next
	a.val.AddStep(id, a.cx.Graph.Text(id)+" is "+step)
}

// updateReverse publishes at matches while the walk moves backward; passing
// an increment in reverse means the value before it was one step behind.
func (a *entityAnalyzer) updateReverse(id prog.NodeID, act Action) {
	if act.Has(ActWrite) && !act.Has(ActIncremental) {
		a.invalid = true
		return
	}
	if act.Has(ActIncremental) {
		next, ok := a.incrementTo(id)
		if !ok {
			a.invalid = true
			return
		}
		delta := next - a.val.Int
		a.val.Int -= delta
	}
	if act.Has(ActRead) {
		a.publishAt(id)
	}
}

func (a *entityAnalyzer) publishAt(id prog.NodeID) {
	r := a.val
	r.Explanation = value.CombineTrails(a.val.Explanation, nil)
	a.cx.Publish(id, r)
}

func (a *entityAnalyzer) Evaluate(id prog.NodeID) (int64, bool) {
	return a.eval(id, 8)
}

func (a *entityAnalyzer) eval(id prog.NodeID, depth int) (int64, bool) {
	if id == prog.NoNodeID || depth <= 0 {
		return 0, false
	}
	for i := range a.assumed {
		as := &a.assumed[i]
		if as.cond == id || prog.Identical(a.cx.Graph, as.cond, id) {
			return boolToInt(as.truth), true
		}
	}
	if a.matches(id) && a.val.IsIntValue() && a.val.Bound == value.BoundPoint && a.val.IsKnown() {
		return a.val.Int, true
	}
	if x, ok := a.cx.Corpus.KnownInt(id); ok {
		return x, true
	}
	n := a.cx.node(id)
	switch {
	case n.IsUnaryOp() && n.Tok == token.Bang:
		x, ok := a.eval(n.Left, depth-1)
		if !ok {
			return 0, false
		}
		return boolToInt(x == 0), true
	case n.IsUnaryOp() && n.Tok == token.Minus:
		x, ok := a.eval(n.Left, depth-1)
		if !ok {
			return 0, false
		}
		return -x, true
	case n.IsBinaryOp() && n.Kind == prog.NodeOp && !n.IsAssign():
		l, ok := a.eval(n.Left, depth-1)
		if !ok {
			return 0, false
		}
		r, ok := a.eval(n.Right, depth-1)
		if !ok {
			return 0, false
		}
		return calcInt(n.Tok, l, r)
	default:
		return 0, false
	}
}

func (a *entityAnalyzer) Assume(cond prog.NodeID, truth, quiet bool) {
	a.assumed = append(a.assumed, assumption{cond: cond, truth: truth})
	if quiet {
		return
	}
	if truth {
		a.val.AddStep(cond, "assuming condition is true")
	} else {
		a.val.AddStep(cond, "assuming condition is false")
	}
}

func (a *entityAnalyzer) ShouldDescend(open prog.NodeID) bool {
	if a.val.IsKnown() || a.val.IsImpossible() || a.val.IsLifetimeValue() {
		return true
	}
	return !a.writtenBetween(open, a.cx.node(open).Link)
}

// writtenBetween scans the stream region for writes to the entity.
func (a *entityAnalyzer) writtenBetween(from, to prog.NodeID) bool {
	wrote := false
	prog.EachStream(a.cx.Graph, from, to, func(id prog.NodeID) bool {
		act := a.Classify(id, Forward)
		if act.Has(ActWrite) || act.Has(ActInvalidate) {
			wrote = true
			return false
		}
		return true
	})
	return wrote
}

func (a *entityAnalyzer) Lower() {
	if a.val.IsUninitValue() {
		// частично инициализированная переменная: факт остаётся, но спорный
		a.val.Kind = value.Inconclusive
		return
	}
	a.val.LowerToPossible()
}

func (a *entityAnalyzer) Fork() Analyzer {
	b := *a
	b.val.Explanation = value.CombineTrails(a.val.Explanation, nil)
	b.assumed = append([]assumption(nil), a.assumed...)
	return &b
}
